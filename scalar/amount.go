package scalar

import (
	"errors"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses a localized number string into an exact non-negative
// decimal.
//
// All whitespace is stripped first (the French group separator is a space,
// and some banks space out every group), then the locale's group separators,
// then the decimal separator is mapped to '.'. Any residue fails the parse.
// The magnitude is returned; a leading sign in the source is discarded
// because direction is decided by the transaction kind, not the string.
func ParseDecimal(s string, loc Locale) (decimal.Decimal, error) {
	cleaned, err := normalizeNumber(s, loc)
	if err != nil {
		return decimal.Decimal{}, &MalformedScalarError{Input: s, Locale: loc.Tag, Err: err}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, &MalformedScalarError{Input: s, Locale: loc.Tag, Err: err}
	}
	return d.Abs(), nil
}

// ParseAmount parses a localized monetary amount into non-negative minor
// units (factor 100), rounding half up on the absolute value.
func ParseAmount(s string, loc Locale) (int64, error) {
	d, err := ParseDecimal(s, loc)
	if err != nil {
		return 0, err
	}
	// decimal.Round rounds half away from zero; on a non-negative value
	// that is round half up.
	return d.Shift(2).Round(0).IntPart(), nil
}

// ParseShares parses a localized share count into an exact non-negative
// quantity. Share counts keep their full precision: fund savings plans
// report fractions down to six or eight decimals.
func ParseShares(s string, loc Locale) (decimal.Decimal, error) {
	return ParseDecimal(s, loc)
}

// normalizeNumber strips the locale's separators down to a plain decimal
// string. Printed group separators must sit on true group boundaries: "1,2,3"
// is not a number under any convention, and stripping it to "123" would turn
// a malformed capture into a wrong amount. Whitespace groups stay lenient
// because banks space numbers inconsistently.
func normalizeNumber(s string, loc Locale) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	digits := 0 // digits since the start or the last group separator
	grouped := false
	decimalSeen := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			// covers regular, non-breaking and narrow spaces
		case r == loc.Decimal:
			if decimalSeen {
				return "", errors.New("second decimal separator")
			}
			if grouped && digits != 3 {
				return "", errors.New("misplaced group separator")
			}
			decimalSeen = true
			b.WriteRune('.')
		case strings.ContainsRune(loc.Groups, r):
			if decimalSeen {
				return "", errors.New("group separator after the decimal separator")
			}
			if digits == 0 || (grouped && digits != 3) {
				return "", errors.New("misplaced group separator")
			}
			grouped = true
			digits = 0
		default:
			if unicode.IsDigit(r) && !decimalSeen {
				digits++
			}
			b.WriteRune(r)
		}
	}
	if grouped && !decimalSeen && digits != 3 {
		return "", errors.New("misplaced group separator")
	}
	return b.String(), nil
}
