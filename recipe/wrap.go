package recipe

import (
	"fmt"

	"github.com/etnz/extract"
	"github.com/etnz/extract/date"
	"github.com/etnz/extract/scalar"
)

// wrap converts a filled transaction into the extract item its block type
// promises. Returning (nil, nil) drops the item silently; that is reserved
// for postings whose amount came out zero, which documents genuinely print
// (a 0,00 tax line on a tax-exempt dividend).
func wrap(recipeName string, kind extract.Kind, t *Transaction, loc scalar.Locale) (any, error) {
	switch kind {
	case extract.KindTrade:
		return wrapTrade(t, loc)
	case extract.KindPosting:
		return wrapPosting(t, loc)
	case extract.KindAccountTransfer:
		return wrapAccountTransfer(t, loc)
	case extract.KindPortfolioTransfer:
		return wrapPortfolioTransfer(t, loc)
	case extract.KindSecurity:
		sec, err := security(t, true)
		if err != nil {
			return nil, err
		}
		return &extract.SecurityDeclaration{Sec: sec}, nil
	case extract.KindPrice:
		return wrapPrice(t, loc)
	default:
		return nil, fmt.Errorf("recipe %q: no wrapper for %q", recipeName, kind)
	}
}

func wrapTrade(t *Transaction, loc scalar.Locale) (any, error) {
	sec, err := security(t, true)
	if err != nil {
		return nil, err
	}
	day, err := tradeDate(t, loc)
	if err != nil {
		return nil, err
	}
	if t.Currency == "" {
		return nil, fmt.Errorf("trade has no currency")
	}
	if t.Shares.IsZero() {
		return nil, fmt.Errorf("trade has no shares")
	}
	if t.Amount == 0 {
		return nil, fmt.Errorf("trade has no amount")
	}
	side := extract.Buy
	if t.Type == "sell" {
		side = extract.Sell
	}
	trade := &extract.Trade{
		Side:   side,
		Sec:    sec,
		Date:   day,
		Shares: extract.Q(t.Shares),
		Amount: extract.M(t.Amount, t.Currency),
		Fees:   extract.M(t.Fee, t.Currency),
		Taxes:  extract.M(t.Tax, t.Currency),
	}
	if !t.ExchangeRate.IsZero() {
		trade.Exchange = &extract.ExchangeRate{
			Base: t.BaseCurrency,
			Term: t.TermCurrency,
			Rate: extract.Q(t.ExchangeRate),
		}
	}
	return trade, nil
}

func wrapPosting(t *Transaction, loc scalar.Locale) (any, error) {
	day, err := tradeDate(t, loc)
	if err != nil {
		return nil, err
	}
	if t.Currency == "" {
		return nil, fmt.Errorf("posting has no currency")
	}
	if t.Amount == 0 {
		// a printed zero line carries no movement
		return nil, nil
	}
	sec, err := security(t, false)
	if err != nil {
		return nil, err
	}
	return &extract.Posting{
		Kind:         postingKinds[t.Type],
		Sec:          sec,
		Counterparty: peer(t),
		Date:         day,
		Shares:       extract.Q(t.Shares),
		Amount:       extract.M(t.Amount, t.Currency),
		Fees:         extract.M(t.Fee, t.Currency),
		Taxes:        extract.M(t.Tax, t.Currency),
	}, nil
}

func wrapAccountTransfer(t *Transaction, loc scalar.Locale) (any, error) {
	day, err := tradeDate(t, loc)
	if err != nil {
		return nil, err
	}
	if t.Currency == "" {
		return nil, fmt.Errorf("transfer has no currency")
	}
	if t.Amount == 0 {
		return nil, nil
	}
	return &extract.AccountTransfer{
		Date:         day,
		Amount:       extract.M(t.Amount, t.Currency),
		Counterparty: peer(t),
	}, nil
}

func wrapPortfolioTransfer(t *Transaction, loc scalar.Locale) (any, error) {
	sec, err := security(t, true)
	if err != nil {
		return nil, err
	}
	day, err := tradeDate(t, loc)
	if err != nil {
		return nil, err
	}
	if t.Shares.IsZero() {
		return nil, fmt.Errorf("portfolio transfer has no shares")
	}
	out := &extract.PortfolioTransfer{
		Date:   day,
		Sec:    sec,
		Shares: extract.Q(t.Shares),
	}
	if t.Amount != 0 {
		if t.Currency == "" {
			return nil, fmt.Errorf("portfolio transfer has an amount but no currency")
		}
		out.Amount = extract.M(t.Amount, t.Currency)
	}
	return out, nil
}

func wrapPrice(t *Transaction, loc scalar.Locale) (any, error) {
	sec, err := security(t, true)
	if err != nil {
		return nil, err
	}
	day, err := tradeDate(t, loc)
	if err != nil {
		return nil, err
	}
	if t.Currency == "" || t.Amount == 0 {
		return nil, fmt.Errorf("price line has no value")
	}
	return &extract.PricePoint{
		Sec:   sec,
		Date:  day,
		Value: extract.M(t.Amount, t.Currency),
	}, nil
}

// security builds the item's security reference from the bound identifiers.
// Resolution against the batch cache happens later, in the pipeline.
func security(t *Transaction, required bool) (*extract.Security, error) {
	if t.ISIN == "" && t.WKN == "" && t.Ticker == "" && t.SecurityName == "" {
		if required {
			return nil, fmt.Errorf("no security identifier bound")
		}
		return nil, nil
	}
	if t.ISIN != "" {
		if err := extract.ValidateISIN(t.ISIN); err != nil {
			return nil, err
		}
	}
	return &extract.Security{
		ISIN:     t.ISIN,
		WKN:      t.WKN,
		Ticker:   t.Ticker,
		Name:     t.SecurityName,
		Currency: t.Currency,
	}, nil
}

func peer(t *Transaction) *extract.Peer {
	if t.Peer == "" && t.IBAN == "" {
		return nil
	}
	return &extract.Peer{Name: t.Peer, IBAN: t.IBAN}
}

func tradeDate(t *Transaction, loc scalar.Locale) (date.Date, error) {
	if t.Date == "" {
		return date.Date{}, fmt.Errorf("no date bound")
	}
	return scalar.ParseDate(t.Date, loc)
}
