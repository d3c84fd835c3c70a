package extract

import (
	"errors"
	"testing"
)

func TestSecurityCacheResolvesSameInstance(t *testing.T) {
	c, err := NewSecurityCache(nil)
	if err != nil {
		t.Fatalf("NewSecurityCache() error = %v", err)
	}

	first, err := c.Resolve(&Security{ISIN: "DE0007164600", Name: "SAP SE"})
	if err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}
	// second reference carries only the ISIN, must find the same record
	second, err := c.Resolve(&Security{ISIN: "DE0007164600"})
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if first != second {
		t.Errorf("two references with the same ISIN resolved to different records")
	}
	// the name was registered too
	third, err := c.Resolve(&Security{Name: "SAP SE"})
	if err != nil {
		t.Fatalf("third Resolve() error = %v", err)
	}
	if first != third {
		t.Errorf("name reference did not resolve to the registered record")
	}
}

func TestSecurityCacheResolutionOrder(t *testing.T) {
	bySAP := &Security{ISIN: "DE0007164600", Name: "SAP SE"}
	byName := &Security{Name: "SAP SE", Ticker: "SAP"}
	c, err := NewSecurityCache([]*Security{bySAP, byName})
	if err != nil {
		t.Fatalf("NewSecurityCache() error = %v", err)
	}

	// ISIN wins over a name that points at another record
	got, err := c.Resolve(&Security{ISIN: "DE0007164600", Name: "SAP SE"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != bySAP {
		t.Errorf("Resolve() = %v, want the ISIN-keyed record", got)
	}
	// ticker-only reference reaches the second record
	got, err = c.Resolve(&Security{Ticker: "SAP"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != byName {
		t.Errorf("Resolve() = %v, want the ticker-keyed record", got)
	}
}

func TestSecurityCacheIdenticalNameDistinctISIN(t *testing.T) {
	c, err := NewSecurityCache(nil)
	if err != nil {
		t.Fatalf("NewSecurityCache() error = %v", err)
	}
	a, err := c.Resolve(&Security{ISIN: "DE0007164600", Name: "Twin"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	b, err := c.Resolve(&Security{ISIN: "US0378331005", Name: "Twin"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if a == b {
		t.Errorf("distinct ISINs with an identical name must stay two records")
	}
	// the first record stays reachable through its own ISIN
	got, err := c.Resolve(&Security{ISIN: "DE0007164600"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != a {
		t.Errorf("Resolve() by ISIN = %v, want the first record", got)
	}
}

func TestSecurityCacheNameHitNeverOverridesWKNMismatch(t *testing.T) {
	known := &Security{WKN: "716460", Name: "Twin"}
	c, err := NewSecurityCache([]*Security{known})
	if err != nil {
		t.Fatalf("NewSecurityCache() error = %v", err)
	}
	got, err := c.Resolve(&Security{WKN: "865985", Name: "Twin"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got == known {
		t.Errorf("name hit resolved across a WKN mismatch")
	}
}

func TestNewSecurityCacheDuplicateIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		existing []*Security
		wantID   string
	}{
		{
			name: "duplicate isin",
			existing: []*Security{
				{ISIN: "DE0007164600", Name: "SAP SE"},
				{ISIN: "DE0007164600", Name: "SAP duplicate"},
			},
			wantID: "isin",
		},
		{
			name: "duplicate wkn",
			existing: []*Security{
				{WKN: "716460", Name: "SAP SE"},
				{WKN: "716460", Name: "SAP duplicate"},
			},
			wantID: "wkn",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSecurityCache(tc.existing)
			var dup *DuplicateIdentifierError
			if !errors.As(err, &dup) {
				t.Fatalf("NewSecurityCache() error = %v, want *DuplicateIdentifierError", err)
			}
			if dup.Identifier != tc.wantID {
				t.Errorf("Identifier = %q, want %q", dup.Identifier, tc.wantID)
			}
		})
	}
}

func TestSecurityCacheDuplicateNamesAllowedInExisting(t *testing.T) {
	// names are not unique identifiers; two host records may share one
	_, err := NewSecurityCache([]*Security{
		{ISIN: "DE0007164600", Name: "Twin"},
		{ISIN: "US0378331005", Name: "Twin"},
	})
	if err != nil {
		t.Fatalf("NewSecurityCache() error = %v, want success", err)
	}
}

func TestMissingDeclarations(t *testing.T) {
	known := &Security{ISIN: "DE0007164600", Name: "SAP SE"}
	c, err := NewSecurityCache([]*Security{known})
	if err != nil {
		t.Fatalf("NewSecurityCache() error = %v", err)
	}

	declared, _ := c.Resolve(&Security{ISIN: "US0378331005", Name: "Apple Inc."})
	undeclared, _ := c.Resolve(&Security{ISIN: "US5949181045", Name: "Microsoft Corp."})

	items := []Item{
		&Trade{Provenance: Provenance{Source: "a.txt"}, Side: Buy, Sec: known},
		&SecurityDeclaration{Provenance: Provenance{Source: "a.txt"}, Sec: declared},
		&Trade{Provenance: Provenance{Source: "b.txt"}, Side: Buy, Sec: declared},
		&Posting{Provenance: Provenance{Source: "b.txt"}, Kind: Dividend, Sec: undeclared},
		&Posting{Provenance: Provenance{Source: "c.txt"}, Kind: Tax, Sec: undeclared},
	}

	missing := c.MissingDeclarations(items)
	if len(missing) != 1 {
		t.Fatalf("MissingDeclarations() returned %d items, want 1", len(missing))
	}
	decl, ok := missing[0].(*SecurityDeclaration)
	if !ok {
		t.Fatalf("MissingDeclarations() returned a %T, want *SecurityDeclaration", missing[0])
	}
	if decl.Sec != undeclared {
		t.Errorf("declaration is for %v, want the undeclared security", decl.Sec)
	}
	if decl.From() != "b.txt" {
		t.Errorf("declaration source = %q, want the first referencing document %q", decl.From(), "b.txt")
	}
}

func TestPeerCache(t *testing.T) {
	host := &Peer{Name: "Jane Doe", IBAN: "DE89370400440532013000"}
	c, err := NewPeerCache([]*Peer{host})
	if err != nil {
		t.Fatalf("NewPeerCache() error = %v", err)
	}

	got, err := c.Resolve(&Peer{IBAN: "DE89370400440532013000"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != host {
		t.Errorf("IBAN reference did not resolve to the host record")
	}

	fresh, err := c.Resolve(&Peer{Name: "John Doe"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	again, err := c.Resolve(&Peer{Name: "John Doe"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if fresh != again {
		t.Errorf("two references to the same new peer resolved to different records")
	}
}

func TestNewPeerCacheDuplicateIBAN(t *testing.T) {
	_, err := NewPeerCache([]*Peer{
		{Name: "Jane Doe", IBAN: "DE89370400440532013000"},
		{Name: "Jane D.", IBAN: "DE89370400440532013000"},
	})
	var dup *DuplicateIdentifierError
	if !errors.As(err, &dup) {
		t.Fatalf("NewPeerCache() error = %v, want *DuplicateIdentifierError", err)
	}
	if dup.Identifier != "iban" {
		t.Errorf("Identifier = %q, want %q", dup.Identifier, "iban")
	}
}
