package quote

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/etnz/extract/scalar"
)

// TableFeed reads daily prices out of the HTML quote tables brokers and
// portals publish. Columns are recognized by their localized header text;
// a table missing a date or a close column is skipped.
type TableFeed struct {
	// Hint forces the number locale for all cells. When nil the locale is
	// taken from the document's lang attribute, or guessed per cell from
	// the separators.
	Hint *scalar.Locale
}

// Header alternations follow what the portals actually print.
var (
	dateHeaders  = headerPatterns(`Datum.*`, `Date.*`)
	closeHeaders = headerPatterns(`Schluss.*`, `Schluß.*`, `Rücknahmepreis.*`, `Close.*`, `Zuletzt`, `Price`, `akt\. Kurs`)
	highHeaders  = headerPatterns(`Hoch.*`, `Tageshoch.*`, `Max.*`, `High.*`)
	lowHeaders   = headerPatterns(`Tief.*`, `Tagestief.*`, `Low.*`)
)

func headerPatterns(exprs ...string) []*regexp.Regexp {
	rxs := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		rxs[i] = regexp.MustCompile(`^(?i:` + e + `)$`)
	}
	return rxs
}

func matchesHeader(rxs []*regexp.Regexp, text string) bool {
	text = scalar.Strip(text)
	for _, rx := range rxs {
		if rx.MatchString(text) {
			return true
		}
	}
	return false
}

// columns maps recognized header kinds to their cell index within a row.
type columns struct {
	date, close, high, low int
}

// Prices parses every table in the HTML document and returns the union of
// their rows. Cells that do not parse cost only their own row.
func (f *TableFeed) Prices(html string) ([]Price, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	hint := f.Hint
	if hint == nil {
		hint = hintFromLang(doc)
	}

	var prices []Price
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		cols, headerRow, ok := findHeader(table)
		if !ok {
			return
		}
		table.Find("tr").Each(func(row int, tr *goquery.Selection) {
			if row <= headerRow {
				return
			}
			if p, ok := f.parseRow(tr, cols, hint); ok {
				prices = append(prices, p)
			}
		})
	})
	if len(prices) == 0 {
		return nil, fmt.Errorf("no quote table found in document")
	}
	return prices, nil
}

// findHeader looks for a row whose cells match at least a date and a close
// header, within the first rows of the table.
func findHeader(table *goquery.Selection) (columns, int, bool) {
	var cols columns
	headerRow := -1
	table.Find("tr").EachWithBreak(func(row int, tr *goquery.Selection) bool {
		// headers live near the top, do not scan the whole table
		if row > 4 {
			return false
		}
		c := columns{date: -1, close: -1, high: -1, low: -1}
		tr.Children().Each(func(i int, cell *goquery.Selection) {
			text := cell.Text()
			switch {
			case matchesHeader(dateHeaders, text):
				c.date = i
			case matchesHeader(closeHeaders, text):
				c.close = i
			case matchesHeader(highHeaders, text):
				c.high = i
			case matchesHeader(lowHeaders, text):
				c.low = i
			}
		})
		if c.date >= 0 && c.close >= 0 {
			cols, headerRow = c, row
			return false
		}
		return true
	})
	return cols, headerRow, headerRow >= 0
}

func (f *TableFeed) parseRow(tr *goquery.Selection, cols columns, hint *scalar.Locale) (Price, bool) {
	cells := tr.Children()
	if cells.Length() <= cols.date || cells.Length() <= cols.close {
		return Price{}, false
	}
	p := Price{Close: NotAvailable, High: NotAvailable, Low: NotAvailable, Volume: NotAvailable}

	// dates are unambiguous across the candidate layouts far more often
	// than numbers, so every date locale is simply tried
	ok := false
	for _, loc := range []scalar.Locale{scalar.German, scalar.English, scalar.British} {
		if d, err := scalar.ParseDate(cells.Eq(cols.date).Text(), loc); err == nil {
			p.Day, ok = d, true
			break
		}
	}
	if !ok {
		return Price{}, false
	}

	value, ok := parseQuote(cells.Eq(cols.close).Text(), hint)
	if !ok {
		return Price{}, false
	}
	p.Close = value

	if cols.high >= 0 && cells.Length() > cols.high {
		if v, ok := parseQuote(cells.Eq(cols.high).Text(), hint); ok {
			p.High = v
		}
	}
	if cols.low >= 0 && cells.Length() > cols.low {
		if v, ok := parseQuote(cells.Eq(cols.low).Text(), hint); ok {
			p.Low = v
		}
	}
	return p, true
}

// parseQuote parses one number cell. A bare "-" is how the portals print an
// absent value. Without a hint the format is guessed from the cell itself:
// an apostrophe means the Swiss convention, otherwise the last separator
// decides between German and English.
func parseQuote(text string, hint *scalar.Locale) (int64, bool) {
	text = scalar.Strip(text)
	if text == "" || text == "-" {
		return NotAvailable, false
	}
	loc := scalar.German
	switch {
	case hint != nil:
		loc = *hint
	case strings.ContainsAny(text, "'’"):
		loc = scalar.Swiss
	case strings.LastIndexAny(text, ".") > strings.LastIndexAny(text, ","):
		loc = scalar.English
	}
	d, err := scalar.ParseDecimal(text, loc)
	if err != nil {
		return NotAvailable, false
	}
	return Fixed(d), true
}

// hintFromLang maps the document's html lang attribute to a number locale.
func hintFromLang(doc *goquery.Document) *scalar.Locale {
	lang, _ := doc.Find("html").Attr("lang")
	return hintFromTag(lang)
}

func hintFromTag(lang string) *scalar.Locale {
	lang = strings.ToLower(lang)
	switch {
	case strings.HasPrefix(lang, "de-ch"):
		return &scalar.Swiss
	case strings.HasPrefix(lang, "de"):
		return &scalar.German
	case strings.HasPrefix(lang, "en"):
		return &scalar.English
	default:
		return nil
	}
}
