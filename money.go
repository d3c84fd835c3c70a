package extract

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a monetary magnitude in minor units (cents for EUR or USD) with
// its currency code. Document amounts are always non-negative; the item kind
// carries the direction.
type Money struct {
	units int64 // minor units, never negative when produced by the parsers
	cur   string
}

// M returns a Money of the given minor units and ISO currency code.
func M(minorUnits int64, currency string) Money {
	return Money{units: minorUnits, cur: currency}
}

// MinorUnits returns the raw minor-unit magnitude.
func (m Money) MinorUnits() int64 { return m.units }

// Currency returns the ISO currency code.
func (m Money) Currency() string { return m.cur }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.units == 0 }

// Add returns the sum of two amounts. Currencies must agree; the empty
// currency is weak and takes the other side's.
func (m Money) Add(n Money) Money {
	return Money{units: m.units + n.units, cur: cur(m, n)}
}

// Sub returns the difference of two amounts, which may be negative.
func (m Money) Sub(n Money) Money {
	return Money{units: m.units - n.units, cur: cur(m, n)}
}

func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// Decimal returns the amount in major units as an exact decimal, using the
// currency's registered fraction.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.units, -int32(m.fraction()))
}

// fraction returns the number of minor-unit digits of the currency.
func (m Money) fraction() int {
	// the money.Money constructor is the one place guaranteed to hand back
	// a non-nil currency, unknown codes included
	return money.New(0, m.cur).Currency().Fraction
}

// String formats the amount with the currency's display convention.
func (m Money) String() string {
	return money.New(m.units, m.cur).Display()
}

// Equal reports whether two amounts have the same magnitude and currency.
func (m Money) Equal(n Money) bool { return m.units == n.units && m.cur == n.cur }

// MarshalJSON renders the amount as {"amount":"12.34","currency":"EUR"}.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"amount":%q,"currency":%q}`, m.Decimal().StringFixed(int32(m.fraction())), m.cur)), nil
}
