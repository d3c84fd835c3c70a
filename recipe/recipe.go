// Package recipe loads declarative extraction recipes from YAML files and
// compiles them into pattern document types producing extract items.
//
// A recipe describes one institution's documents as data: a marker, blocks
// keyed by transaction type, and sections whose named capture groups bind
// well-known targets (isin, date, amount, ...). Everything a recipe can say
// is validated at load time; a recipe that loads will not surprise at
// extraction time.
package recipe

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	yaml "gopkg.in/yaml.v2"
)

// File is the YAML shape of one recipe.
type File struct {
	Name    string  `yaml:"name"`
	Marker  string  `yaml:"marker"`
	Exclude string  `yaml:"exclude,omitempty"`
	Locale  string  `yaml:"locale"`
	Prelude []Rule  `yaml:"prelude,omitempty"`
	Blocks  []Match `yaml:"blocks"`
}

// Match is the YAML shape of one block: a transaction type plus the lines
// that delimit and fill it.
type Match struct {
	Type     string `yaml:"type"`
	Start    string `yaml:"start"`
	End      string `yaml:"end,omitempty"`
	Boundary string `yaml:"boundary,omitempty"` // "next-start" (default) or "document"
	MaxLines int    `yaml:"maxLines,omitempty"`
	Sections []Rule `yaml:"sections"`
}

// Rule is the YAML shape of one section. Pattern lines use the (?<name>...)
// capture syntax; Attributes are static bindings applied on every match;
// DocValues pull prelude bindings into the section.
type Rule struct {
	Pattern    []string          `yaml:"pattern,omitempty"`
	Optional   bool              `yaml:"optional,omitempty"`
	Repeats    bool              `yaml:"repeats,omitempty"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
	DocValues  []string          `yaml:"docValues,omitempty"`
	OneOf      []Rule            `yaml:"oneOf,omitempty"`
}

// Parse reads one recipe from YAML. Strict decoding: an unknown field in
// the file is a typo, not an extension point.
func Parse(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("invalid recipe: %w", err)
	}
	return &f, nil
}

// LoadDir loads and compiles every *.yaml recipe under dir, sorted by file
// name so extraction order stays deterministic.
func LoadDir(dir string) ([]*Compiled, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && (filepath.Ext(path) == ".yaml" || filepath.Ext(path) == ".yml") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var compiled []*Compiled
	for _, path := range paths {
		r, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		f, err := Parse(r)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		c, err := Compile(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		compiled = append(compiled, c)
	}
	return compiled, nil
}
