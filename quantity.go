package extract

import "github.com/shopspring/decimal"

// Quantity is an exact share count. Fund savings plans report fractions down
// to eight decimals, so quantities are kept as decimals, not floats.
type Quantity struct {
	value decimal.Decimal
}

// Q wraps a decimal share count.
func Q(value decimal.Decimal) Quantity { return Quantity{value: value} }

// QInt is a convenience for whole share counts, mostly in tests.
func QInt(n int64) Quantity { return Quantity{value: decimal.NewFromInt(n)} }

func (q Quantity) Decimal() decimal.Decimal  { return q.value }
func (q Quantity) IsZero() bool              { return q.value.IsZero() }
func (q Quantity) Equal(p Quantity) bool     { return q.value.Equal(p.value) }
func (q Quantity) Add(p Quantity) Quantity   { return Quantity{value: q.value.Add(p.value)} }
func (q Quantity) String() string            { return q.value.String() }
func (q Quantity) MarshalJSON() ([]byte, error) { return []byte(q.value.String()), nil }
