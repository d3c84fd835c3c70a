package extract

import (
	"github.com/etnz/extract/date"
)

// Kind is a typed string identifying the variant of an extracted item.
type Kind string

const (
	KindTrade             Kind = "trade"
	KindPosting           Kind = "posting"
	KindAccountTransfer   Kind = "account-transfer"
	KindPortfolioTransfer Kind = "portfolio-transfer"
	KindSecurity          Kind = "security"
	KindPrice             Kind = "price"
)

// Side distinguishes the two directions of a trade.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// PostingKind classifies an account posting.
type PostingKind string

const (
	Dividend       PostingKind = "dividend"
	Interest       PostingKind = "interest"
	InterestCharge PostingKind = "interest-charge"
	Tax            PostingKind = "tax"
	TaxRefund      PostingKind = "tax-refund"
	Fee            PostingKind = "fee"
	FeeRefund      PostingKind = "fee-refund"
	Deposit        PostingKind = "deposit"
	Withdrawal     PostingKind = "withdrawal"
)

// Item is the tagged-variant output of one successful block match. Each
// variant wraps one domain record plus provenance and optional routing
// hints the importer resolves later.
type Item interface {
	What() Kind
	// From returns the name of the source document.
	From() string
	// Security returns the instrument the item refers to, or nil.
	Security() *Security
}

// Provenance carries the source document name and the optional
// account/portfolio routing hints of an item.
type Provenance struct {
	Source    string `json:"source"`
	Account   string `json:"account,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

func (p Provenance) From() string { return p.Source }

// stamp records the source document on items whose producer left it unset.
func (p *Provenance) stamp(source string) {
	if p.Source == "" {
		p.Source = source
	}
}

// Trade is a buy or sell of a security against an account.
type Trade struct {
	Provenance
	Side     Side
	Sec      *Security
	Date     date.Date
	Shares   Quantity
	Amount   Money // total settled amount including fees and taxes
	Fees     Money
	Taxes    Money
	Exchange *ExchangeRate // set when the trade settled across currencies
}

func (t *Trade) What() Kind          { return KindTrade }
func (t *Trade) Security() *Security { return t.Sec }

// Posting is a single account movement: dividend, interest, tax, fee,
// deposit or withdrawal. Security and Counterparty are each optional.
type Posting struct {
	Provenance
	Kind         PostingKind
	Sec          *Security
	Counterparty *Peer
	Date         date.Date
	Shares       Quantity // dividends per lot report the entitled shares
	Amount       Money
	Fees         Money
	Taxes        Money
}

func (p *Posting) What() Kind          { return KindPosting }
func (p *Posting) Security() *Security { return p.Sec }

// AccountTransfer moves cash between two accounts.
type AccountTransfer struct {
	Provenance
	Date         date.Date
	Amount       Money
	Counterparty *Peer
}

func (t *AccountTransfer) What() Kind          { return KindAccountTransfer }
func (t *AccountTransfer) Security() *Security { return nil }

// PortfolioTransfer moves a position between two portfolios.
type PortfolioTransfer struct {
	Provenance
	Date   date.Date
	Sec    *Security
	Shares Quantity
	Amount Money // book value carried over, may be zero
}

func (t *PortfolioTransfer) What() Kind          { return KindPortfolioTransfer }
func (t *PortfolioTransfer) Security() *Security { return t.Sec }

// SecurityDeclaration declares an instrument, either explicitly from a
// document or synthesized for an instrument that items reference without
// declaring.
type SecurityDeclaration struct {
	Provenance
	Sec *Security
}

func (d *SecurityDeclaration) What() Kind          { return KindSecurity }
func (d *SecurityDeclaration) Security() *Security { return d.Sec }

// PricePoint records one price for a security found in a document, such as
// the valuation line of a statement.
type PricePoint struct {
	Provenance
	Sec   *Security
	Date  date.Date
	Value Money
}

func (p *PricePoint) What() Kind          { return KindPrice }
func (p *PricePoint) Security() *Security { return p.Sec }

// ExchangeRate is a resolved conversion between the document currency and
// the security currency, carried on the capture context's typed side channel
// between the section that read it and the sections that need it.
type ExchangeRate struct {
	Base string // currency the rate converts from
	Term string // currency the rate converts to
	Rate Quantity
}
