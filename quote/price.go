// Package quote normalizes raw price payloads (JSON feeds, HTML tables)
// into fixed-point daily prices and merges competing observations for the
// same day.
package quote

import (
	"fmt"

	"github.com/etnz/extract/date"
	"github.com/shopspring/decimal"
)

// Factor is the fixed-point denominator of Close, High and Low: prices are
// stored as integer hundred-millionths.
const Factor = 100_000_000

// NotAvailable marks a field the source did not report. Zero is a real
// value (a halted stock can close at 0), so absence needs its own sentinel.
const NotAvailable = -1

// Price is one daily observation. Close, High and Low are fixed-point at
// Factor; Volume is a raw count. Any field but Day may be NotAvailable.
type Price struct {
	Day    date.Date
	Close  int64
	High   int64
	Low    int64
	Volume int64
}

// Fixed converts a decimal price into its fixed-point representation,
// rounding half away from zero.
func Fixed(d decimal.Decimal) int64 {
	return d.Shift(8).Round(0).IntPart()
}

// DecimalOf converts a fixed-point field back to a decimal, for display.
func DecimalOf(v int64) decimal.Decimal {
	return decimal.New(v, -8)
}

func (p Price) String() string {
	if p.Close == NotAvailable {
		return fmt.Sprintf("%s n/a", p.Day)
	}
	return fmt.Sprintf("%s %s", p.Day, DecimalOf(p.Close))
}

// completeness counts the fields the observation actually reports.
func (p Price) completeness() int {
	n := 0
	for _, v := range []int64{p.Close, p.High, p.Low, p.Volume} {
		if v != NotAvailable {
			n++
		}
	}
	return n
}

// PreferComplete picks between two observations for the same day: the more
// complete one wins, and on equal completeness the newer observation b
// wins. Merging never mixes fields from both; an observation is taken or
// dropped whole, so a series always reflects prices a source actually
// published.
func PreferComplete(a, b Price) Price {
	if b.completeness() >= a.completeness() {
		return b
	}
	return a
}

// Series is the per-security daily price history.
type Series = date.History[Price]

// MergeInto folds new observations into a series day by day under the
// PreferComplete rule. The operation is idempotent: merging the same
// payload twice leaves the series unchanged.
func MergeInto(s *Series, prices []Price) {
	for _, p := range prices {
		s.Merge(p.Day, p, PreferComplete)
	}
}
