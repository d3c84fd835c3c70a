// Package scalar parses localized amounts, share counts, and dates from
// bank and broker documents into canonical values.
//
// Amounts become non-negative minor-unit integers (cents), share counts
// exact decimals, and dates day-granularity date.Date values. The sign of an
// amount is never taken from the string itself: documents report magnitudes,
// and the transaction kind decides the direction.
package scalar

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/etnz/extract/date"
)

// Locale describes how one locale family writes numbers and dates.
type Locale struct {
	Tag     string   // BCP-47-ish tag, e.g. "de-DE"
	Decimal rune     // decimal separator
	Groups  string   // group separator runes, all stripped before parsing
	Layouts []string // ordered Go time layouts, tried first to last

	// months maps lowercased localized month tokens (full names,
	// abbreviations, known misspellings) to the English token the Layouts
	// are written against.
	months map[string]string

	monthRx *regexp.Regexp
}

// Built-in locale families covering the documents the engine is fed with.
var (
	// German also covers Austria; note the apostrophe group separator is a
	// Swiss habit and lives in Swiss instead.
	German = newLocale("de-DE", ',', ".   ", germanMonths,
		"2.1.06", "2.1.2006", "2. January 2006", "2. Jan 2006", "2 January 2006", "2 Jan 06",
		"2 Jan 2006", "2-1-2006", "2-Jan-2006", "2006-1-2", "2/1/2006")

	// Swiss is German with the apostrophe thousands separator (both the
	// ASCII ' and the typographic ’ appear in the wild).
	Swiss = newLocale("de-CH", '.', "' ’  ", germanMonths,
		"2.1.06", "2.1.2006", "2. January 2006", "2 January 2006", "2006-1-2")

	French = newLocale("fr-FR", ',', " .  ", frenchMonths,
		"2.1.2006", "2/1/2006", "2 Jan 2006", "2 January 2006", "2006-1-2")

	// English is the US convention: month first.
	English = newLocale("en-US", '.', ",   ", englishMonths,
		"1/2/2006", "1/2/06", "1-2-2006", "1-2-06", "Jan 2, 2006", "January 2, 2006",
		"Jan/2/2006", "2-Jan-2006", "2 Jan 2006", "2 January 2006", "2006-1-2", "20060102")

	// British is day first with the same separators as English.
	British = newLocale("en-GB", '.', ",   ", englishMonths,
		"2/1/2006", "2/1/06", "2.1.2006", "2 Jan 2006", "2 January 2006", "Jan/2/2006", "2006-1-2")

	Dutch = newLocale("nl-NL", ',', ".   ", dutchMonths,
		"2-1-2006", "2-1-06", "2.1.2006", "2 Jan 2006", "2 January 2006", "2006-1-2")
)

var germanMonths = map[string]string{
	"januar": "January", "februar": "February", "märz": "March", "april": "April",
	"mai": "May", "juni": "June", "juli": "July", "august": "August",
	"september": "September", "oktober": "October", "november": "November", "dezember": "December",
	"jan": "Jan", "feb": "Feb", "mär": "Mar", "mrz": "Mar", "apr": "Apr",
	"jun": "Jun", "jul": "Jul", "aug": "Aug", "sep": "Sep", "sept": "Sep",
	"okt": "Oct", "nov": "Nov", "dez": "Dec",
}

var frenchMonths = map[string]string{
	"janvier": "January", "février": "February", "mars": "March", "avril": "April",
	"mai": "May", "juin": "June", "juillet": "July", "août": "August",
	"septembre": "September", "octobre": "October", "novembre": "November", "décembre": "December",
	"janv": "Jan", "févr": "Feb", "avr": "Apr", "juil": "Jul",
	"sept": "Sep", "oct": "Oct", "nov": "Nov", "déc": "Dec",
}

var englishMonths = map[string]string{
	"january": "January", "february": "February", "march": "March", "april": "April",
	"may": "May", "june": "June", "july": "July", "august": "August",
	"september": "September", "october": "October", "november": "November", "december": "December",
	"jan": "Jan", "feb": "Feb", "mar": "Mar", "apr": "Apr", "jun": "Jun",
	"jul": "Jul", "aug": "Aug", "sep": "Sep", "sept": "Sep", "oct": "Oct",
	"nov": "Nov", "dec": "Dec",
}

var dutchMonths = map[string]string{
	"januari": "January", "februari": "February", "maart": "March", "april": "April",
	"mei": "May", "juni": "June", "juli": "July", "augustus": "August",
	"september": "September", "oktober": "October", "november": "November", "december": "December",
	"jan": "Jan", "feb": "Feb", "mrt": "Mar", "apr": "Apr", "jun": "Jun",
	"jul": "Jul", "aug": "Aug", "sep": "Sep", "okt": "Oct", "nov": "Nov", "dec": "Dec",
}

func newLocale(tag string, decimal rune, groups string, months map[string]string, layouts ...string) Locale {
	return Locale{
		Tag:     tag,
		Decimal: decimal,
		Groups:  groups,
		Layouts: layouts,
		months:  months,
		monthRx: monthRegexp(months),
	}
}

// monthRegexp builds one case-insensitive alternation over all month tokens,
// longest first so "juillet" is not eaten by "juil".
func monthRegexp(months map[string]string) *regexp.Regexp {
	tokens := make([]string, 0, len(months))
	for tok := range months {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool { return len(tokens[i]) > len(tokens[j]) })
	for i, tok := range tokens {
		tokens[i] = regexp.QuoteMeta(tok)
	}
	return regexp.MustCompile(`(?i)(` + strings.Join(tokens, "|") + `)\.?`)
}

// translateMonth rewrites localized month tokens into the English tokens the
// Go layouts are written against. A trailing dot after an abbreviation
// ("janv.", "Okt.") is swallowed with the token.
func (loc Locale) translateMonth(s string) string {
	return loc.monthRx.ReplaceAllStringFunc(s, func(m string) string {
		key := strings.ToLower(strings.TrimSuffix(m, "."))
		if eng, ok := loc.months[key]; ok {
			return eng
		}
		return m
	})
}

// ParseDate parses the date string under the locale's ordered candidate
// layouts, returning the first layout that consumes the whole string.
func ParseDate(s string, loc Locale) (date.Date, error) {
	cleaned := loc.translateMonth(Strip(s))
	for _, layout := range loc.Layouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return date.FromTime(t), nil
		}
	}
	return date.Date{}, &NoMatchingDateFormatError{Input: s, Locale: loc.Tag}
}
