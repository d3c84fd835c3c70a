package pattern

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

// note is the record the test blocks fill in.
type note struct {
	kind   string
	isin   string
	amount string
	fees   []string
}

func isinSection() *Section {
	return &Section{
		Captures: []string{"isin"},
		Lines:    []Line{Match(`ISIN (?P<isin>[A-Z0-9]{12})`)},
		Assign: func(v *Context, target any) error {
			target.(*note).isin = v.Get("isin")
			return nil
		},
	}
}

func amountSection() *Section {
	return &Section{
		Captures: []string{"amount"},
		Lines:    []Line{Match(`Total (?P<amount>[\d,.]+) EUR`)},
		Assign: func(v *Context, target any) error {
			target.(*note).amount = v.Get("amount")
			return nil
		},
	}
}

func feeSection(label string) *Section {
	return &Section{
		Captures: []string{"fee"},
		Optional: true,
		Lines:    []Line{Match(label + ` (?P<fee>[\d,.]+) EUR`)},
		Assign: func(v *Context, target any) error {
			n := target.(*note)
			n.fees = append(n.fees, v.Get("fee"))
			return nil
		},
	}
}

func buyBlock() *Block {
	return &Block{
		Start:    Match(`Wertpapier Abrechnung Kauf`),
		Subject:  func() any { return &note{kind: "buy"} },
		Sections: []*Section{isinSection(), amountSection(), feeSection("Provision"), feeSection("Börsengebühr"), feeSection("Fremdspesen")},
		Wrap:     func(target any, ctx *Context) (any, error) { return target, nil },
	}
}

func docType(blocks ...*Block) *DocumentType {
	return &DocumentType{
		Name:   "testbank",
		Marker: regexp.MustCompile(`Testbank AG`),
		Blocks: blocks,
	}
}

const buyText = `Testbank AG
Wertpapier Abrechnung Kauf
ISIN DE0007664039
Provision 5,00 EUR
Total 1.234,56 EUR
`

func TestDocumentTypeGate(t *testing.T) {
	d := docType(buyBlock())
	if !d.Matches(buyText) {
		t.Fatal("marker should activate the document type")
	}
	if d.Matches("Other Bank\nWertpapier Abrechnung Kauf\n") {
		t.Error("document type activated without its marker")
	}

	d.Exclude = regexp.MustCompile(`Stornierung`)
	if d.Matches("Testbank AG\nStornierung\n") {
		t.Error("exclude pattern did not deactivate the document type")
	}
}

func TestBlockMatch(t *testing.T) {
	d := docType(buyBlock())
	items, errs := d.Parse("buy.txt", buyText)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	n := items[0].(*note)
	if n.isin != "DE0007664039" || n.amount != "1.234,56" {
		t.Errorf("bound note = %+v", n)
	}
}

// A block with three independent optional fee sections where only one
// matches must bind exactly that one.
func TestOptionalSections(t *testing.T) {
	text := `Testbank AG
Wertpapier Abrechnung Kauf
ISIN DE0007664039
Börsengebühr 5,00 EUR
Total 100,00 EUR
`
	items, errs := docType(buyBlock()).Parse("fees.txt", text)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	n := items[0].(*note)
	if len(n.fees) != 1 || n.fees[0] != "5,00" {
		t.Errorf("fees = %v, want exactly [5,00]", n.fees)
	}
}

// A required section that fails aborts only its own block attempt; sibling
// blocks in the same document still run.
func TestRequiredSectionAborts(t *testing.T) {
	text := `Testbank AG
Wertpapier Abrechnung Kauf
no isin here
Dividendengutschrift
ISIN FR0000120271
Total 50,00 EUR
`
	div := &Block{
		Start:    Match(`Dividendengutschrift`),
		Subject:  func() any { return &note{kind: "dividend"} },
		Sections: []*Section{isinSection(), amountSection()},
		Wrap:     func(target any, ctx *Context) (any, error) { return target, nil },
	}
	items, errs := docType(buyBlock(), div).Parse("mixed.txt", text)

	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 (the dividend)", len(items))
	}
	if got := items[0].(*note); got.kind != "dividend" || got.isin != "FR0000120271" {
		t.Errorf("surviving item = %+v", got)
	}
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want exactly one section error", errs)
	}
	var sectionErr *SectionError
	if !errors.As(errs[0], &sectionErr) {
		t.Fatalf("error %v is not a *SectionError", errs[0])
	}
	if len(sectionErr.Captures) != 1 || sectionErr.Captures[0] != "isin" {
		t.Errorf("section error captures = %v, want [isin]", sectionErr.Captures)
	}
}

// All named groups across all lines of a section merge into one view; a
// section where only some lines match is not a match at all.
func TestMultiLineSectionBindsAllOrNothing(t *testing.T) {
	section := &Section{
		Captures: []string{"name", "currency"},
		Lines: []Line{
			Match(`Stück [\d,.]+ (?P<name>.*)`),
			Match(`Kurswert .* (?P<currency>[A-Z]{3})`),
		},
		Assign: func(v *Context, target any) error {
			for _, name := range []string{"name", "currency"} {
				if !v.Has(name) {
					t.Errorf("capture %q missing from completed section view", name)
				}
			}
			n := target.(*note)
			n.isin = v.Get("name") + "/" + v.Get("currency")
			return nil
		},
	}
	block := &Block{
		Start:    Match(`Kauf`),
		Subject:  func() any { return new(note) },
		Sections: []*Section{section},
		Wrap:     func(target any, ctx *Context) (any, error) { return target, nil },
	}

	items, errs := docType(block).Parse("ok.txt", "Testbank AG\nKauf\nStück 10 BASF SE\nKurswert 400,00 EUR\n")
	if len(errs) != 0 || len(items) != 1 {
		t.Fatalf("items=%d errs=%v, want 1 item", len(items), errs)
	}
	if got := items[0].(*note).isin; got != "BASF SE/EUR" {
		t.Errorf("merged binding = %q", got)
	}

	// second line missing: the whole section fails, no partial assignment
	items, errs = docType(block).Parse("partial.txt", "Testbank AG\nKauf\nStück 10 BASF SE\n")
	if len(items) != 0 || len(errs) != 1 {
		t.Errorf("partial section: items=%d errs=%v, want 0 items and 1 error", len(items), errs)
	}
}

// A block without a wrap function is a recipe construction mistake; the
// engine reports it instead of crashing mid-document.
func TestMissingWrapIsAnError(t *testing.T) {
	block := buyBlock()
	block.Wrap = nil
	items, errs := docType(block).Parse("nowrap.txt", buyText)
	if len(items) != 0 {
		t.Errorf("block without wrap emitted %d items", len(items))
	}
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "wrap") {
		t.Errorf("errs = %v, want a single missing-wrap diagnostic", errs)
	}
}

// Even a document-scoped block stops reading at a sibling block's start
// marker: the buy block here has no total of its own and must not bind the
// dividend's.
func TestScopeStopsAtSiblingStart(t *testing.T) {
	text := `Testbank AG
Wertpapier Abrechnung Kauf
ISIN DE0007664039
Dividendengutschrift
ISIN FR0000120271
Total 50,00 EUR
`
	buy := buyBlock()
	buy.Boundary = ToEndOfDocument
	div := &Block{
		Start:    Match(`Dividendengutschrift`),
		Subject:  func() any { return &note{kind: "dividend"} },
		Sections: []*Section{isinSection(), amountSection()},
		Wrap:     func(target any, ctx *Context) (any, error) { return target, nil },
	}
	items, errs := docType(buy, div).Parse("mixed.txt", text)
	if len(items) != 1 {
		t.Fatalf("items = %d, want only the dividend", len(items))
	}
	if got := items[0].(*note); got.kind != "dividend" || got.amount != "50,00" {
		t.Errorf("surviving item = %+v", got)
	}
	if len(errs) != 1 {
		t.Errorf("errs = %v, want the buy's failed required section", errs)
	}
}

func TestWrapVeto(t *testing.T) {
	block := buyBlock()
	block.Wrap = func(target any, ctx *Context) (any, error) { return nil, nil }
	items, errs := docType(block).Parse("veto.txt", buyText)
	if len(items) != 0 {
		t.Errorf("vetoed wrap still emitted %d items", len(items))
	}
	if len(errs) != 0 {
		t.Errorf("veto is not an error, got %v", errs)
	}
}

func TestBoundaryToNextStart(t *testing.T) {
	text := `Testbank AG
Wertpapier Abrechnung Kauf
ISIN DE0007664039
Wertpapier Abrechnung Kauf
ISIN FR0000120271
Total 99,00 EUR
`
	b := buyBlock()
	b.Sections = []*Section{isinSection(), amountSection()}
	items, errs := docType(b).Parse("two.txt", text)

	// First attempt is scoped to before the second start line: its Total is
	// out of reach, so it fails; the second attempt succeeds.
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if got := items[0].(*note).isin; got != "FR0000120271" {
		t.Errorf("item isin = %q, want FR0000120271", got)
	}
	if len(errs) != 1 {
		t.Errorf("errs = %v, want one scope failure", errs)
	}

	// With end-of-document scoping, the first attempt reaches the Total
	// line behind the second start.
	b.Boundary = ToEndOfDocument
	items, _ = docType(b).Parse("two.txt", text)
	if len(items) != 2 {
		t.Errorf("ToEndOfDocument items = %d, want 2", len(items))
	}
}

func TestBlockEndPattern(t *testing.T) {
	b := buyBlock()
	b.Sections = []*Section{isinSection()}
	b.End = Match(`Ende der Abrechnung`)

	// no end marker in scope: the attempt is skipped, not failed
	items, errs := docType(b).Parse("open.txt", buyText)
	if len(items) != 0 || len(errs) != 0 {
		t.Errorf("unclosed block: items=%d errs=%v, want nothing", len(items), errs)
	}

	closed := buyText + "Ende der Abrechnung\n"
	items, errs = docType(b).Parse("closed.txt", closed)
	if len(items) != 1 || len(errs) != 0 {
		t.Errorf("closed block: items=%d errs=%v, want 1 item", len(items), errs)
	}
}

func TestMaxLines(t *testing.T) {
	b := buyBlock()
	b.Sections = []*Section{isinSection(), amountSection()}
	b.MaxLines = 3 // start line + ISIN + Provision: Total is out of reach
	_, errs := docType(b).Parse("capped.txt", buyText)
	if len(errs) != 1 {
		t.Errorf("MaxLines did not truncate the scope, errs = %v", errs)
	}
}

func TestRepeatingSection(t *testing.T) {
	text := `Testbank AG
Sammelabrechnung
Posten 1,00 EUR
Posten 2,00 EUR
Posten 3,00 EUR
`
	repeat := &Section{
		Captures: []string{"fee"},
		Repeats:  true,
		Lines:    []Line{Match(`Posten (?P<fee>[\d,.]+) EUR`)},
		Assign: func(v *Context, target any) error {
			n := target.(*note)
			n.fees = append(n.fees, v.Get("fee"))
			return nil
		},
	}
	block := &Block{
		Start:    Match(`Sammelabrechnung`),
		Subject:  func() any { return new(note) },
		Sections: []*Section{repeat},
		Wrap:     func(target any, ctx *Context) (any, error) { return target, nil },
	}
	items, errs := docType(block).Parse("repeat.txt", text)
	if len(errs) != 0 || len(items) != 1 {
		t.Fatalf("items=%d errs=%v", len(items), errs)
	}
	if got := items[0].(*note).fees; strings.Join(got, ",") != "1,00,2,00,3,00" {
		t.Errorf("repeated assignments = %v, want all three", got)
	}
}

func TestOneOf(t *testing.T) {
	alt := &Section{
		Alternatives: []*Section{
			{
				Captures: []string{"amount"},
				Lines:    []Line{Match(`Betrag (?P<amount>[\d,.]+) EUR`)},
				Assign: func(v *Context, target any) error {
					target.(*note).amount = "de:" + v.Get("amount")
					return nil
				},
			},
			{
				Captures: []string{"amount"},
				Lines:    []Line{Match(`Amount EUR (?P<amount>[\d,.]+)`)},
				Assign: func(v *Context, target any) error {
					target.(*note).amount = "en:" + v.Get("amount")
					return nil
				},
			},
		},
	}
	block := &Block{
		Start:    Match(`Abrechnung`),
		Subject:  func() any { return new(note) },
		Sections: []*Section{alt},
		Wrap:     func(target any, ctx *Context) (any, error) { return target, nil },
	}

	items, errs := docType(block).Parse("en.txt", "Testbank AG\nAbrechnung\nAmount EUR 7,50\n")
	if len(errs) != 0 || len(items) != 1 {
		t.Fatalf("items=%d errs=%v", len(items), errs)
	}
	if got := items[0].(*note).amount; got != "en:7,50" {
		t.Errorf("alternative binding = %q, want en:7,50", got)
	}

	_, errs = docType(block).Parse("none.txt", "Testbank AG\nAbrechnung\nnothing\n")
	if len(errs) != 1 {
		t.Errorf("no alternative matched: errs = %v, want one error", errs)
	}
}

func TestPreludeContext(t *testing.T) {
	d := docType(&Block{
		Start:   Match(`Umsatz .*`),
		Subject: func() any { return new(note) },
		Sections: []*Section{{
			Captures:  []string{"amount"},
			DocValues: []string{"year"},
			Lines:     []Line{Match(`Umsatz (?P<amount>[\d,.]+)`)},
			Assign: func(v *Context, target any) error {
				target.(*note).amount = v.Get("amount") + "/" + v.Get("year")
				return nil
			},
		}},
		Wrap: func(target any, ctx *Context) (any, error) { return target, nil },
	})
	d.Prelude = []*Section{{
		Captures: []string{"year"},
		Lines:    []Line{Match(`Kontoauszug (?P<year>\d{4})`)},
		Assign: func(v *Context, target any) error {
			target.(*Context).Put("year", v.Get("year"))
			return nil
		},
	}}

	text := "Testbank AG\nKontoauszug 2023\nUmsatz 10,00\n"
	items, errs := d.Parse("context.txt", text)
	if len(errs) != 0 || len(items) != 1 {
		t.Fatalf("items=%d errs=%v", len(items), errs)
	}
	if got := items[0].(*note).amount; got != "10,00/2023" {
		t.Errorf("document context binding = %q, want 10,00/2023", got)
	}
}

func TestContextTypedSideChannel(t *testing.T) {
	ctx := NewContext()
	view := ctx.view([]string{"a"}, map[string]string{"a": "1"})
	view.PutType("rate", 1.25)
	if v, ok := ctx.GetType("rate"); !ok || v.(float64) != 1.25 {
		t.Errorf("typed value not shared between view and attempt context: %v %v", v, ok)
	}
	if ctx.Has("a") {
		t.Error("string bindings of a view must not leak into the attempt context")
	}
}
