package extract

import (
	"errors"
	"fmt"
	"log"

	"github.com/etnz/extract/pattern"
)

// ErrUnsupported reports a document no known type claimed.
var ErrUnsupported = errors.New("document is not supported by any known type")

// ErrNoItems reports a document a type claimed but produced nothing from,
// usually a sign the recipe drifted behind a layout change.
var ErrNoItems = errors.New("document matched but yielded no items")

// A RawDocument is the text a caller wants items extracted from, already
// converted from its carrier format (PDF, CSV, scrape).
type RawDocument struct {
	Name string
	Text string
}

// A Result pairs the items extracted from one document with the recoverable
// diagnostics produced along the way. Diagnostics never suppress items: a
// failed block attempt costs only its own item.
type Result struct {
	Name  string
	Items []Item
	Errs  []error
}

// Session drives one extraction batch: it owns the identity caches, runs
// documents strictly sequentially, and finishes with the implicit
// declaration pass. A Session is single-use; build a fresh one per batch.
type Session struct {
	types      []*pattern.DocumentType
	securities *SecurityCache
	peers      *PeerCache

	results []Result
}

// NewSession builds a batch over the given document types, seeded with the
// host's pre-existing securities and peers.
func NewSession(types []*pattern.DocumentType, securities []*Security, peers []*Peer) (*Session, error) {
	sc, err := NewSecurityCache(securities)
	if err != nil {
		return nil, fmt.Errorf("building security cache: %w", err)
	}
	pc, err := NewPeerCache(peers)
	if err != nil {
		return nil, fmt.Errorf("building peer cache: %w", err)
	}
	return &Session{types: types, securities: sc, peers: pc}, nil
}

// Extract runs the batch's document types over one document and returns its
// items. Errors are collected into the Result, not returned: a batch keeps
// going past a document that fails, and the caller decides what a partial
// harvest is worth.
func (s *Session) Extract(doc RawDocument) Result {
	res := Result{Name: doc.Name}

	matched := false
	for _, dt := range s.types {
		if !dt.Matches(doc.Text) {
			continue
		}
		matched = true
		raw, errs := dt.Parse(doc.Name, doc.Text)
		res.Errs = append(res.Errs, errs...)
		for _, v := range raw {
			item, ok := v.(Item)
			if !ok {
				res.Errs = append(res.Errs, fmt.Errorf("%s: type %q produced a %T, not an item", doc.Name, dt.Name, v))
				continue
			}
			item, err := s.canonicalize(item)
			if err != nil {
				res.Errs = append(res.Errs, fmt.Errorf("%s: %w", doc.Name, err))
				continue
			}
			if st, ok := item.(interface{ stamp(string) }); ok {
				st.stamp(doc.Name)
			}
			res.Items = append(res.Items, item)
		}
	}

	if !matched {
		res.Errs = append(res.Errs, fmt.Errorf("%s: %w", doc.Name, ErrUnsupported))
	} else if len(res.Items) == 0 && len(res.Errs) == 0 {
		res.Errs = append(res.Errs, fmt.Errorf("%s: %w", doc.Name, ErrNoItems))
	}

	s.results = append(s.results, res)
	return res
}

// canonicalize replaces the security and peer references an item carries
// with the cache's canonical records, so every item pointing at the same
// instrument shares one *Security.
func (s *Session) canonicalize(item Item) (Item, error) {
	switch it := item.(type) {
	case *Trade:
		sec, err := s.securities.Resolve(it.Sec)
		if err != nil {
			return nil, err
		}
		it.Sec = sec
	case *Posting:
		if it.Sec != nil {
			sec, err := s.securities.Resolve(it.Sec)
			if err != nil {
				return nil, err
			}
			it.Sec = sec
		}
		if it.Counterparty != nil {
			peer, err := s.peers.Resolve(it.Counterparty)
			if err != nil {
				return nil, err
			}
			it.Counterparty = peer
		}
	case *AccountTransfer:
		if it.Counterparty != nil {
			peer, err := s.peers.Resolve(it.Counterparty)
			if err != nil {
				return nil, err
			}
			it.Counterparty = peer
		}
	case *PortfolioTransfer:
		sec, err := s.securities.Resolve(it.Sec)
		if err != nil {
			return nil, err
		}
		it.Sec = sec
	case *SecurityDeclaration:
		sec, err := s.securities.Resolve(it.Sec)
		if err != nil {
			return nil, err
		}
		it.Sec = sec
	case *PricePoint:
		sec, err := s.securities.Resolve(it.Sec)
		if err != nil {
			return nil, err
		}
		it.Sec = sec
	}
	return item, nil
}

// Items returns every item extracted so far, completed with one synthesized
// declaration per security the batch references but neither the host nor
// the batch declares. Declarations are appended after all extracted items,
// in first-reference order.
func (s *Session) Items() []Item {
	var items []Item
	for _, res := range s.results {
		items = append(items, res.Items...)
	}
	return append(items, s.securities.MissingDeclarations(items)...)
}

// Errs returns every diagnostic collected so far, in document order.
func (s *Session) Errs() []error {
	var errs []error
	for _, res := range s.results {
		errs = append(errs, res.Errs...)
	}
	return errs
}

// Extract is the one-shot form: it runs the given types over a single
// document with empty caches and returns items plus diagnostics.
func Extract(name, text string, types []*pattern.DocumentType) ([]Item, []error) {
	s, err := NewSession(types, nil, nil)
	if err != nil {
		// empty caches cannot collide
		log.Panicf("building empty session: %v", err)
	}
	res := s.Extract(RawDocument{Name: name, Text: text})
	return s.Items(), res.Errs
}
