package recipe

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/etnz/extract"
	"github.com/etnz/extract/pattern"
	"github.com/etnz/extract/scalar"
	"github.com/shopspring/decimal"
)

// Transaction is the neutral record a block fills before it is wrapped into
// an extract item. Every well-known capture target writes one field here.
type Transaction struct {
	Type string

	ISIN         string
	WKN          string
	Ticker       string
	SecurityName string

	Currency string
	Date     string // raw capture, parsed at wrap time under the recipe locale
	Time     string
	Amount   int64 // minor units
	Shares   decimal.Decimal
	Fee      int64
	Tax      int64

	ExchangeRate decimal.Decimal
	BaseCurrency string
	TermCurrency string

	Peer string
	IBAN string
}

// A setter applies one bound capture to the transaction under the recipe's
// locale. The setter table is the complete list of well-known targets; a
// capture name outside it fails the recipe at load time.
type setter func(t *Transaction, value string, loc scalar.Locale) error

var setters = map[string]setter{
	"isin":   func(t *Transaction, v string, _ scalar.Locale) error { t.ISIN = v; return nil },
	"wkn":    func(t *Transaction, v string, _ scalar.Locale) error { t.WKN = v; return nil },
	"ticker": func(t *Transaction, v string, _ scalar.Locale) error { t.Ticker = v; return nil },
	"name":   func(t *Transaction, v string, _ scalar.Locale) error { t.SecurityName = scalar.ReplaceMultipleBlanks(v); return nil },
	"currency": func(t *Transaction, v string, _ scalar.Locale) error {
		t.Currency = strings.ToUpper(scalar.Strip(v))
		return nil
	},
	"date": func(t *Transaction, v string, _ scalar.Locale) error { t.Date = v; return nil },
	"time": func(t *Transaction, v string, _ scalar.Locale) error { t.Time = scalar.Strip(v); return nil },
	"amount": func(t *Transaction, v string, loc scalar.Locale) error {
		units, err := scalar.ParseAmount(v, loc)
		if err != nil {
			return err
		}
		t.Amount = units
		return nil
	},
	"shares": func(t *Transaction, v string, loc scalar.Locale) error {
		shares, err := scalar.ParseShares(v, loc)
		if err != nil {
			return err
		}
		t.Shares = shares
		return nil
	},
	// fee and tax accumulate: documents spread them over several sections
	"fee": func(t *Transaction, v string, loc scalar.Locale) error {
		units, err := scalar.ParseAmount(v, loc)
		if err != nil {
			return err
		}
		t.Fee += units
		return nil
	},
	"tax": func(t *Transaction, v string, loc scalar.Locale) error {
		units, err := scalar.ParseAmount(v, loc)
		if err != nil {
			return err
		}
		t.Tax += units
		return nil
	},
	"exchangeRate": func(t *Transaction, v string, loc scalar.Locale) error {
		rate, err := scalar.ParseDecimal(v, loc)
		if err != nil {
			return err
		}
		t.ExchangeRate = rate
		return nil
	},
	"baseCurrency": func(t *Transaction, v string, _ scalar.Locale) error {
		t.BaseCurrency = strings.ToUpper(scalar.Strip(v))
		return nil
	},
	"termCurrency": func(t *Transaction, v string, _ scalar.Locale) error {
		t.TermCurrency = strings.ToUpper(scalar.Strip(v))
		return nil
	},
	"peer": func(t *Transaction, v string, _ scalar.Locale) error { t.Peer = scalar.ReplaceMultipleBlanks(v); return nil },
	"iban": func(t *Transaction, v string, _ scalar.Locale) error { t.IBAN = scalar.StripBlanks(v); return nil },
}

// blockKinds maps recipe block types to the item they produce.
var blockKinds = map[string]extract.Kind{
	"buy":                extract.KindTrade,
	"sell":               extract.KindTrade,
	"dividend":           extract.KindPosting,
	"interest":           extract.KindPosting,
	"interest-charge":    extract.KindPosting,
	"tax":                extract.KindPosting,
	"tax-refund":         extract.KindPosting,
	"fee":                extract.KindPosting,
	"fee-refund":         extract.KindPosting,
	"deposit":            extract.KindPosting,
	"withdrawal":         extract.KindPosting,
	"account-transfer":   extract.KindAccountTransfer,
	"portfolio-transfer": extract.KindPortfolioTransfer,
	"security":           extract.KindSecurity,
	"price":              extract.KindPrice,
}

var postingKinds = map[string]extract.PostingKind{
	"dividend":        extract.Dividend,
	"interest":        extract.Interest,
	"interest-charge": extract.InterestCharge,
	"tax":             extract.Tax,
	"tax-refund":      extract.TaxRefund,
	"fee":             extract.Fee,
	"fee-refund":      extract.FeeRefund,
	"deposit":         extract.Deposit,
	"withdrawal":      extract.Withdrawal,
}

// Compiled is one ready-to-run recipe.
type Compiled struct {
	Name string
	Type *pattern.DocumentType
}

// Compile validates a recipe file and builds its document type. All
// structural errors surface here: bad regexps, unknown block types, capture
// names without a setter, duplicate captures within a section.
func Compile(f *File) (*Compiled, error) {
	if f.Name == "" {
		return nil, fmt.Errorf("recipe has no name")
	}
	if f.Marker == "" {
		return nil, fmt.Errorf("recipe %q has no marker", f.Name)
	}
	marker, err := regexp.Compile(f.Marker)
	if err != nil {
		return nil, fmt.Errorf("recipe %q: bad marker: %w", f.Name, err)
	}
	dt := &pattern.DocumentType{Name: f.Name, Marker: marker}
	if f.Exclude != "" {
		if dt.Exclude, err = regexp.Compile(f.Exclude); err != nil {
			return nil, fmt.Errorf("recipe %q: bad exclude: %w", f.Name, err)
		}
	}
	loc, err := localeOf(f.Locale)
	if err != nil {
		return nil, fmt.Errorf("recipe %q: %w", f.Name, err)
	}

	for i, rule := range f.Prelude {
		section, err := compilePrelude(rule)
		if err != nil {
			return nil, fmt.Errorf("recipe %q: prelude %d: %w", f.Name, i+1, err)
		}
		dt.Prelude = append(dt.Prelude, section)
	}

	for i, m := range f.Blocks {
		block, err := compileBlock(f.Name, m, loc)
		if err != nil {
			return nil, fmt.Errorf("recipe %q: block %d (%s): %w", f.Name, i+1, m.Type, err)
		}
		dt.Blocks = append(dt.Blocks, block)
	}
	if len(dt.Blocks) == 0 {
		return nil, fmt.Errorf("recipe %q has no blocks", f.Name)
	}
	return &Compiled{Name: f.Name, Type: dt}, nil
}

func localeOf(tag string) (scalar.Locale, error) {
	switch tag {
	case "", "de-DE", "de":
		return scalar.German, nil
	case "de-CH":
		return scalar.Swiss, nil
	case "fr-FR", "fr":
		return scalar.French, nil
	case "en-US", "en":
		return scalar.English, nil
	case "en-GB":
		return scalar.British, nil
	case "nl-NL", "nl":
		return scalar.Dutch, nil
	default:
		return scalar.Locale{}, fmt.Errorf("unknown locale %q", tag)
	}
}

func compileBlock(recipeName string, m Match, loc scalar.Locale) (*pattern.Block, error) {
	kind, ok := blockKinds[m.Type]
	if !ok {
		return nil, fmt.Errorf("unknown block type %q", m.Type)
	}
	if m.Start == "" {
		return nil, fmt.Errorf("block has no start pattern")
	}
	if _, err := compileLinePattern(m.Start); err != nil {
		return nil, fmt.Errorf("bad start pattern: %w", err)
	}

	block := &pattern.Block{
		Start:    pattern.Find(toGoSyntax(m.Start)),
		MaxLines: m.MaxLines,
		Subject:  func() any { return &Transaction{Type: m.Type} },
	}
	if m.End != "" {
		if _, err := compileLinePattern(m.End); err != nil {
			return nil, fmt.Errorf("bad end pattern: %w", err)
		}
		block.End = pattern.Find(toGoSyntax(m.End))
	}
	switch m.Boundary {
	case "", "next-start":
		block.Boundary = pattern.ToNextStart
	case "document":
		block.Boundary = pattern.ToEndOfDocument
	default:
		return nil, fmt.Errorf("unknown boundary %q", m.Boundary)
	}

	if len(m.Sections) == 0 {
		return nil, fmt.Errorf("block has no sections")
	}
	for i, rule := range m.Sections {
		section, err := compileRule(rule, loc)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i+1, err)
		}
		block.Sections = append(block.Sections, section)
	}

	block.Wrap = func(target any, ctx *pattern.Context) (any, error) {
		return wrap(recipeName, kind, target.(*Transaction), loc)
	}
	return block, nil
}

// compileRule turns one YAML rule into a pattern section with an assignment
// closure over the setter table.
func compileRule(rule Rule, loc scalar.Locale) (*pattern.Section, error) {
	if len(rule.OneOf) > 0 {
		if len(rule.Pattern) > 0 || len(rule.Attributes) > 0 {
			return nil, fmt.Errorf("oneOf excludes pattern and attributes on the same rule")
		}
		group := &pattern.Section{Optional: rule.Optional}
		for i, alt := range rule.OneOf {
			section, err := compileRule(alt, loc)
			if err != nil {
				return nil, fmt.Errorf("alternative %d: %w", i+1, err)
			}
			group.Alternatives = append(group.Alternatives, section)
		}
		return group, nil
	}

	captures, lines, err := compileLines(rule.Pattern)
	if err != nil {
		return nil, err
	}
	attrs, err := staticAttributes(rule.Attributes, captures)
	if err != nil {
		return nil, err
	}
	for _, name := range append(append([]string(nil), captures...), rule.DocValues...) {
		if _, ok := setters[name]; !ok {
			return nil, fmt.Errorf("unknown capture target %q", name)
		}
	}

	section := &pattern.Section{
		Captures:  captures,
		Lines:     lines,
		Optional:  rule.Optional,
		Repeats:   rule.Repeats,
		DocValues: rule.DocValues,
	}
	docValues := append([]string(nil), rule.DocValues...)
	section.Assign = func(v *pattern.Context, target any) error {
		t := target.(*Transaction)
		for _, name := range captures {
			if err := setters[name](t, v.Get(name), loc); err != nil {
				return fmt.Errorf("capture %q: %w", name, err)
			}
		}
		for _, name := range docValues {
			if err := setters[name](t, v.Get(name), loc); err != nil {
				return fmt.Errorf("document value %q: %w", name, err)
			}
		}
		for _, a := range attrs {
			if err := setters[a.name](t, a.value, loc); err != nil {
				return fmt.Errorf("attribute %q: %w", a.name, err)
			}
		}
		return nil
	}
	return section, nil
}

// compilePrelude builds a section whose captures land in the document
// context under their own names. Prelude capture names are free-form; they
// only need a matching docValues reference somewhere.
func compilePrelude(rule Rule) (*pattern.Section, error) {
	if len(rule.OneOf) > 0 {
		return nil, fmt.Errorf("oneOf is not supported in the prelude")
	}
	captures, lines, err := compileLines(rule.Pattern)
	if err != nil {
		return nil, err
	}
	return &pattern.Section{
		Captures: captures,
		Lines:    lines,
		Optional: rule.Optional,
		Assign: func(v *pattern.Context, target any) error {
			ctx := target.(*pattern.Context)
			for _, name := range captures {
				ctx.Put(name, v.Get(name))
			}
			return nil
		},
	}, nil
}

// compileLines compiles the pattern lines and collects their named capture
// groups. A name captured twice within one section is ambiguous and
// rejected.
func compileLines(exprs []string) (captures []string, lines []pattern.Line, err error) {
	if len(exprs) == 0 {
		return nil, nil, fmt.Errorf("rule has no pattern lines")
	}
	seen := make(map[string]bool)
	for _, expr := range exprs {
		rx, err := compileLinePattern(expr)
		if err != nil {
			return nil, nil, fmt.Errorf("bad pattern %q: %w", expr, err)
		}
		for _, name := range rx.SubexpNames() {
			if name == "" {
				continue
			}
			if seen[name] {
				return nil, nil, fmt.Errorf("capture %q bound twice in one rule", name)
			}
			seen[name] = true
			captures = append(captures, name)
		}
		lines = append(lines, pattern.Match(toGoSyntax(expr)))
	}
	return captures, lines, nil
}

// namedGroup rewrites the (?<name>...) capture syntax recipes use into the
// (?P<name>...) form Go's regexp engine requires.
var namedGroup = regexp.MustCompile(`\(\?<([A-Za-z][A-Za-z0-9]*)>`)

func toGoSyntax(expr string) string {
	return namedGroup.ReplaceAllString(expr, `(?P<$1>`)
}

func compileLinePattern(expr string) (*regexp.Regexp, error) {
	return regexp.Compile(toGoSyntax(expr))
}

type attribute struct {
	name, value string
}

// staticAttributes validates and orders the rule's fixed bindings.
func staticAttributes(m map[string]string, captures []string) ([]attribute, error) {
	captured := make(map[string]bool)
	for _, c := range captures {
		captured[c] = true
	}
	names := make([]string, 0, len(m))
	for name := range m {
		if _, ok := setters[name]; !ok {
			return nil, fmt.Errorf("unknown attribute target %q", name)
		}
		if captured[name] {
			return nil, fmt.Errorf("attribute %q shadows a capture of the same rule", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	attrs := make([]attribute, 0, len(names))
	for _, name := range names {
		attrs = append(attrs, attribute{name: name, value: m[name]})
	}
	return attrs, nil
}
