package extract

import "fmt"

// DuplicateIdentifierError reports two records claiming the same supposedly
// unique identifier. During cache construction it is fatal to the batch: an
// ambiguous identity space cannot be resolved against safely.
type DuplicateIdentifierError struct {
	Identifier string // "isin", "wkn" or "iban"
	Value      string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("duplicate %s %q: identifier is claimed by more than one record", e.Identifier, e.Value)
}

// SecurityCache resolves any subset of {ISIN, WKN, ticker, name} to a single
// canonical Security record. It is owned by one extraction batch, filled
// with the host's pre-existing records up front, and grown with records
// synthesized on a miss.
//
// The cache is not safe for concurrent use; the batch processes documents
// strictly sequentially.
type SecurityCache struct {
	byISIN   map[string]*Security
	byWKN    map[string]*Security
	byTicker map[string]*Security
	byName   map[string]*Security

	// preexisting marks records the host collection already knows, which
	// therefore never need a synthesized declaration item.
	preexisting map[*Security]bool
}

// NewSecurityCache builds the cache from the host's pre-existing records.
// It fails fast when two records share a non-empty ISIN or a non-empty WKN:
// that is a data-integrity error in the host collection, not something an
// extraction batch may silently paper over.
func NewSecurityCache(existing []*Security) (*SecurityCache, error) {
	c := &SecurityCache{
		byISIN:      make(map[string]*Security),
		byWKN:       make(map[string]*Security),
		byTicker:    make(map[string]*Security),
		byName:      make(map[string]*Security),
		preexisting: make(map[*Security]bool),
	}
	for _, sec := range existing {
		if sec.ISIN != "" {
			if other, ok := c.byISIN[sec.ISIN]; ok && other != sec {
				return nil, &DuplicateIdentifierError{Identifier: "isin", Value: sec.ISIN}
			}
			c.byISIN[sec.ISIN] = sec
		}
		if sec.WKN != "" {
			if other, ok := c.byWKN[sec.WKN]; ok && other != sec {
				return nil, &DuplicateIdentifierError{Identifier: "wkn", Value: sec.WKN}
			}
			c.byWKN[sec.WKN] = sec
		}
		// tickers and names are not unique by design: first record wins,
		// later ones stay reachable through their stronger identifiers
		if sec.Ticker != "" && c.byTicker[sec.Ticker] == nil {
			c.byTicker[sec.Ticker] = sec
		}
		if sec.Name != "" && c.byName[sec.Name] == nil {
			c.byName[sec.Name] = sec
		}
		c.preexisting[sec] = true
	}
	return c, nil
}

// Lookup resolves a record from the given identifiers, invoking create to
// synthesize one on a complete miss. The resolution order ISIN, WKN,
// ticker, name is fixed: it reflects descending confidence that the
// identifier disambiguates correctly. A synthesized record is registered
// under every non-empty key it carries, so a second reference within the
// batch resolves to the same instance.
func (c *SecurityCache) Lookup(isin, wkn, ticker, name string, create func() *Security) (*Security, error) {
	if isin != "" {
		if sec, ok := c.byISIN[isin]; ok {
			return sec, nil
		}
	}
	if wkn != "" {
		if sec, ok := c.byWKN[wkn]; ok && !contradicts(sec, isin, wkn) {
			return sec, nil
		}
	}
	if ticker != "" {
		if sec, ok := c.byTicker[ticker]; ok && !contradicts(sec, isin, wkn) {
			return sec, nil
		}
	}
	if name != "" {
		if sec, ok := c.byName[name]; ok && !contradicts(sec, isin, wkn) {
			return sec, nil
		}
	}

	sec := create()
	return sec, c.register(sec)
}

// contradicts reports whether a candidate found under a weaker key carries a
// strong identifier that disagrees with one the reference asserts. Two
// same-named securities with distinct ISINs must stay two records; a name
// hit never overrides an ISIN mismatch.
func contradicts(sec *Security, isin, wkn string) bool {
	if isin != "" && sec.ISIN != "" && sec.ISIN != isin {
		return true
	}
	if wkn != "" && sec.WKN != "" && sec.WKN != wkn {
		return true
	}
	return false
}

// Resolve canonicalizes a security reference freshly built from document
// captures: it either finds the record the identifiers already point at or
// adopts the reference as a new record.
func (c *SecurityCache) Resolve(ref *Security) (*Security, error) {
	return c.Lookup(ref.ISIN, ref.WKN, ref.Ticker, ref.Name, func() *Security { return ref })
}

func (c *SecurityCache) register(sec *Security) error {
	if sec.ISIN != "" {
		if other, ok := c.byISIN[sec.ISIN]; ok && other != sec {
			return &DuplicateIdentifierError{Identifier: "isin", Value: sec.ISIN}
		}
		c.byISIN[sec.ISIN] = sec
	}
	if sec.WKN != "" {
		if other, ok := c.byWKN[sec.WKN]; ok && other != sec {
			return &DuplicateIdentifierError{Identifier: "wkn", Value: sec.WKN}
		}
		c.byWKN[sec.WKN] = sec
	}
	if sec.Ticker != "" && c.byTicker[sec.Ticker] == nil {
		c.byTicker[sec.Ticker] = sec
	}
	if sec.Name != "" && c.byName[sec.Name] == nil {
		c.byName[sec.Name] = sec
	}
	return nil
}

// MissingDeclarations returns one SecurityDeclaration per record that batch
// items reference without the host collection knowing it and without the
// batch declaring it itself. Each such record is declared exactly once, in
// first-reference order, no matter how many items point at it.
func (c *SecurityCache) MissingDeclarations(items []Item) []Item {
	declared := make(map[*Security]bool)
	for _, item := range items {
		if d, ok := item.(*SecurityDeclaration); ok {
			declared[d.Sec] = true
		}
	}

	var missing []Item
	seen := make(map[*Security]bool)
	for _, item := range items {
		sec := item.Security()
		if sec == nil || seen[sec] || declared[sec] || c.preexisting[sec] {
			continue
		}
		seen[sec] = true
		missing = append(missing, &SecurityDeclaration{
			Provenance: Provenance{Source: item.From()},
			Sec:        sec,
		})
	}
	return missing
}

// PeerCache resolves transfer counterparties the same way SecurityCache
// resolves instruments, keyed by IBAN first, then name.
type PeerCache struct {
	byIBAN map[string]*Peer
	byName map[string]*Peer
}

// NewPeerCache builds the cache from the host's pre-existing peers, failing
// fast on an IBAN claimed twice.
func NewPeerCache(existing []*Peer) (*PeerCache, error) {
	c := &PeerCache{
		byIBAN: make(map[string]*Peer),
		byName: make(map[string]*Peer),
	}
	for _, p := range existing {
		if p.IBAN != "" {
			if other, ok := c.byIBAN[p.IBAN]; ok && other != p {
				return nil, &DuplicateIdentifierError{Identifier: "iban", Value: p.IBAN}
			}
			c.byIBAN[p.IBAN] = p
		}
		if p.Name != "" && c.byName[p.Name] == nil {
			c.byName[p.Name] = p
		}
	}
	return c, nil
}

// Resolve canonicalizes a peer reference built from document captures.
func (c *PeerCache) Resolve(ref *Peer) (*Peer, error) {
	if ref.IBAN != "" {
		if p, ok := c.byIBAN[ref.IBAN]; ok {
			return p, nil
		}
	}
	if ref.Name != "" {
		if p, ok := c.byName[ref.Name]; ok {
			return p, nil
		}
	}
	if ref.IBAN != "" {
		if other, ok := c.byIBAN[ref.IBAN]; ok && other != ref {
			return nil, &DuplicateIdentifierError{Identifier: "iban", Value: ref.IBAN}
		}
		c.byIBAN[ref.IBAN] = ref
	}
	if ref.Name != "" && c.byName[ref.Name] == nil {
		c.byName[ref.Name] = ref
	}
	return ref, nil
}
