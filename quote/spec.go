package quote

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/extract/date"
	yaml "gopkg.in/yaml.v2"
)

// Spec is the YAML description of one quote source: where to fetch and how
// to read the payload. The url may carry {key}, {from} and {to}
// placeholders filled at fetch time.
type Spec struct {
	Kind string `yaml:"kind"` // "json" or "table"
	URL  string `yaml:"url"`

	Scale int64 `yaml:"scale,omitempty"`

	// json feeds
	Date        string `yaml:"date,omitempty"`
	Close       string `yaml:"close,omitempty"`
	High        string `yaml:"high,omitempty"`
	Low         string `yaml:"low,omitempty"`
	Volume      string `yaml:"volume,omitempty"`
	LatestDate  string `yaml:"latestDate,omitempty"`
	LatestClose string `yaml:"latestClose,omitempty"`

	// table feeds
	Lang string `yaml:"lang,omitempty"` // forced number locale, e.g. "de"
}

// ParseSpec reads and validates one feed spec.
func ParseSpec(r io.Reader) (*Spec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var s Spec
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return nil, fmt.Errorf("invalid feed spec: %w", err)
	}
	if s.URL == "" {
		return nil, fmt.Errorf("feed spec has no url")
	}
	switch s.Kind {
	case "json":
		if s.Date == "" || s.Close == "" {
			return nil, fmt.Errorf("json feed spec needs date and close paths")
		}
	case "table":
	default:
		return nil, fmt.Errorf("unknown feed kind %q", s.Kind)
	}
	return &s, nil
}

// LoadSpec is ParseSpec over a file.
func LoadSpec(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseSpec(f)
}

// Fetch retrieves and normalizes the series for one key over the given
// range. Zero dates leave their placeholder empty; feeds that need no range
// just omit the placeholders from the url.
func (s *Spec) Fetch(ctx context.Context, f Fetcher, key string, from, to date.Date) ([]Price, error) {
	url := s.expand(key, from, to)
	payload, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	switch s.Kind {
	case "json":
		feed := &JSONFeed{
			DatePath:        s.Date,
			ClosePath:       s.Close,
			HighPath:        s.High,
			LowPath:         s.Low,
			VolumePath:      s.Volume,
			Scale:           s.Scale,
			LatestDatePath:  s.LatestDate,
			LatestClosePath: s.LatestClose,
		}
		return feed.Prices(payload)
	case "table":
		feed := &TableFeed{}
		if s.Lang != "" {
			feed.Hint = hintFromTag(s.Lang)
		}
		return feed.Prices(string(payload))
	default:
		return nil, fmt.Errorf("unknown feed kind %q", s.Kind)
	}
}

func (s *Spec) expand(key string, from, to date.Date) string {
	fromStr, toStr := "", ""
	if !from.IsZero() {
		fromStr = from.String()
	}
	if !to.IsZero() {
		toStr = to.String()
	}
	return strings.NewReplacer("{key}", key, "{from}", fromStr, "{to}", toStr).Replace(s.URL)
}
