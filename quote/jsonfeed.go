package quote

import (
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/shopspring/decimal"
)

// JSONFeed describes how to read daily prices out of one provider's JSON
// payload: a jsonpath per field, addressing parallel arrays. Only Date and
// Close are required; feeds without high/low/volume just leave those paths
// empty.
type JSONFeed struct {
	DatePath   string
	ClosePath  string
	HighPath   string
	LowPath    string
	VolumePath string

	// Scale divides Close, High and Low, for feeds quoting in a minor unit
	// (100 for GBX payloads quoted in pence). Zero means no scaling.
	// Volume is never scaled.
	Scale int64

	// LatestDatePath and LatestClosePath address the single most recent
	// observation, for feeds that publish it outside the history arrays.
	LatestDatePath  string
	LatestClosePath string
}

// Prices extracts the daily series from one payload. Rows whose date cannot
// be interpreted or whose close is missing are skipped silently, matching
// the tolerance feeds demand; a payload that is not JSON at all, even after
// repair, is an error.
func (f *JSONFeed) Prices(payload []byte) ([]Price, error) {
	doc, err := decode(payload)
	if err != nil {
		return nil, err
	}

	dates, err := pathSlice(f.DatePath, doc)
	if err != nil {
		return nil, fmt.Errorf("date path %q: %w", f.DatePath, err)
	}
	closes, err := pathSlice(f.ClosePath, doc)
	if err != nil {
		return nil, fmt.Errorf("close path %q: %w", f.ClosePath, err)
	}
	if len(dates) != len(closes) {
		return nil, fmt.Errorf("date path yields %d values, close path %d", len(dates), len(closes))
	}
	highs := optionalPathSlice(f.HighPath, doc, len(dates))
	lows := optionalPathSlice(f.LowPath, doc, len(dates))
	volumes := optionalPathSlice(f.VolumePath, doc, len(dates))

	var prices []Price
	for i := range dates {
		day, ok := ParseEpochDate(dates[i])
		if !ok {
			continue
		}
		value, ok := f.scaledValue(closes[i])
		if !ok || value <= 0 {
			continue
		}
		p := Price{Day: day, Close: value, High: NotAvailable, Low: NotAvailable, Volume: NotAvailable}
		if v, ok := f.scaledValue(highs[i]); ok {
			p.High = v
		}
		if v, ok := f.scaledValue(lows[i]); ok {
			p.Low = v
		}
		if v, ok := rawInteger(volumes[i]); ok {
			p.Volume = v
		}
		prices = append(prices, p)
	}
	return prices, nil
}

// Latest extracts the single most recent observation. When the trade-date
// path yields nothing usable the feed has no latest price, reported as
// (zero, false, nil): absence, not failure.
func (f *JSONFeed) Latest(payload []byte) (Price, bool, error) {
	doc, err := decode(payload)
	if err != nil {
		return Price{}, false, err
	}
	dv, err := pathValue(f.LatestDatePath, doc)
	if err != nil {
		return Price{}, false, nil
	}
	day, ok := ParseEpochDate(dv)
	if !ok {
		return Price{}, false, nil
	}
	cv, err := pathValue(f.LatestClosePath, doc)
	if err != nil {
		return Price{}, false, fmt.Errorf("latest close path %q: %w", f.LatestClosePath, err)
	}
	value, ok := f.scaledValue(cv)
	if !ok || value <= 0 {
		return Price{}, false, fmt.Errorf("latest close path %q: not a price: %v", f.LatestClosePath, cv)
	}
	return Price{Day: day, Close: value, High: NotAvailable, Low: NotAvailable, Volume: NotAvailable}, true, nil
}

// decode unmarshals the payload, falling back to json-repair for the
// almost-JSON some providers emit (trailing commas, single quotes,
// payloads wrapped in markdown fences).
func decode(payload []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(payload, &doc); err == nil {
		return doc, nil
	}
	repaired, err := jsonrepair.RepairJSON(string(payload))
	if err != nil {
		return nil, fmt.Errorf("payload is not JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &doc); err != nil {
		return nil, fmt.Errorf("payload is not JSON even after repair: %w", err)
	}
	return doc, nil
}

// pathSlice evaluates a jsonpath expected to yield a list. A single value
// is wrapped into a one-element list, because jsonpath is never clear about
// whether it returns a list of one answer or a single answer.
func pathSlice(path string, doc any) ([]any, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, err
	}
	if list, ok := v.([]any); ok {
		return list, nil
	}
	return []any{v}, nil
}

// optionalPathSlice is pathSlice for optional fields: an empty path or any
// evaluation problem degrades to n misses instead of failing the payload.
func optionalPathSlice(path string, doc any, n int) []any {
	if path != "" {
		if list, err := pathSlice(path, doc); err == nil && len(list) == n {
			return list
		}
	}
	return make([]any, n)
}

func pathValue(path string, doc any) (any, error) {
	if path == "" {
		return nil, fmt.Errorf("no path")
	}
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, err
	}
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil, fmt.Errorf("path %q yields nothing", path)
		}
		v = list[0]
	}
	return v, nil
}

// scaledValue converts one raw field into fixed point, applying the feed's
// scale divisor. Numbers carried as strings are accepted.
func (f *JSONFeed) scaledValue(v any) (int64, bool) {
	d, ok := toDecimal(v)
	if !ok {
		return 0, false
	}
	if f.Scale > 1 {
		d = d.Div(decimal.NewFromInt(f.Scale))
	}
	return Fixed(d), true
}

func rawInteger(v any) (int64, bool) {
	d, ok := toDecimal(v)
	if !ok {
		return 0, false
	}
	return d.Round(0).IntPart(), true
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(t)
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}
