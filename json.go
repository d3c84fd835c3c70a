package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
)

// jsonObjectWriter builds a JSON object with an explicit field order, so the
// emitted item lines stay stable and diffable. Its zero value is ready to
// use.
type jsonObjectWriter struct {
	bytes.Buffer
	err error
}

// Append adds a key-value pair, marshaling the value with json.Marshal.
func (w *jsonObjectWriter) Append(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	valBytes, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to marshal value for key %q: %w", key, err)
		return w
	}
	w.WriteString(fmt.Sprintf("%q:", key))
	w.Write(valBytes)
	w.WriteString(",")
	return w
}

// Optional appends a key-value pair only when the value is not zero, keeping
// empty fields out of the line. A type's own IsZero takes precedence over the
// structural zero value: a zero amount that still carries a currency is
// empty all the same.
func (w *jsonObjectWriter) Optional(key string, value any) *jsonObjectWriter {
	if w.err != nil {
		return w
	}
	if z, ok := value.(interface{ IsZero() bool }); ok {
		if z.IsZero() {
			return w
		}
	} else {
		v := reflect.ValueOf(value)
		if !v.IsValid() || v.IsZero() {
			return w
		}
	}
	return w.Append(key, value)
}

// MarshalJSON wraps the accumulated fields in braces. It satisfies
// json.Marshaler.
func (w *jsonObjectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	content := bytes.TrimSuffix(w.Bytes(), []byte(","))
	final := make([]byte, 0, len(content)+2)
	final = append(final, '{')
	final = append(final, content...)
	final = append(final, '}')
	return final, nil
}

// EncodeItem renders one item as a single ordered JSON object. The kind tag
// always comes first, then provenance, then the variant's own fields.
func EncodeItem(item Item) ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("kind", item.What())
	w.Append("source", item.From())

	switch it := item.(type) {
	case *Trade:
		w.Optional("account", it.Account)
		w.Optional("portfolio", it.Portfolio)
		w.Append("side", it.Side)
		w.Append("security", it.Sec)
		w.Append("date", it.Date)
		w.Append("shares", it.Shares)
		w.Append("amount", it.Amount)
		w.Optional("fees", it.Fees)
		w.Optional("taxes", it.Taxes)
		if it.Exchange != nil {
			w.Append("exchangeRate", it.Exchange)
		}
	case *Posting:
		w.Optional("account", it.Account)
		w.Append("type", it.Kind)
		if it.Sec != nil {
			w.Append("security", it.Sec)
		}
		if it.Counterparty != nil {
			w.Append("counterparty", it.Counterparty)
		}
		w.Append("date", it.Date)
		w.Optional("shares", it.Shares)
		w.Append("amount", it.Amount)
		w.Optional("fees", it.Fees)
		w.Optional("taxes", it.Taxes)
	case *AccountTransfer:
		w.Optional("account", it.Account)
		w.Append("date", it.Date)
		w.Append("amount", it.Amount)
		if it.Counterparty != nil {
			w.Append("counterparty", it.Counterparty)
		}
	case *PortfolioTransfer:
		w.Optional("portfolio", it.Portfolio)
		w.Append("date", it.Date)
		w.Append("security", it.Sec)
		w.Append("shares", it.Shares)
		w.Optional("amount", it.Amount)
	case *SecurityDeclaration:
		w.Append("security", it.Sec)
	case *PricePoint:
		w.Append("security", it.Sec)
		w.Append("date", it.Date)
		w.Append("price", it.Value)
	default:
		return nil, fmt.Errorf("cannot encode item of kind %q", item.What())
	}
	return w.MarshalJSON()
}

// WriteItems emits items as JSON lines, one object per line.
func WriteItems(out io.Writer, items []Item) error {
	for _, item := range items {
		b, err := EncodeItem(item)
		if err != nil {
			return err
		}
		if _, err := out.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}
