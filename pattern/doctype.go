package pattern

import (
	"regexp"
	"sort"
	"strings"
)

// DocumentType gates a document with a marker pattern and owns the blocks
// attempted against it. DocumentType values are built once per recipe and
// shared read-only across all documents.
type DocumentType struct {
	// Name identifies the recipe in diagnostics, typically the bank name.
	Name string
	// Marker must match somewhere in the document body for the type to be
	// active. An inactive type contributes nothing, not even an error.
	Marker *regexp.Regexp
	// Exclude, when set, deactivates the type if it matches anywhere.
	Exclude *regexp.Regexp

	// Prelude sections bind document-scoped values (a statement-wide year,
	// a base currency) into the document context before any block runs.
	// Their assignment target is the document context itself.
	Prelude []*Section

	Blocks []*Block
}

// Matches reports whether the document type is active for the given text.
func (d *DocumentType) Matches(text string) bool {
	if !d.Marker.MatchString(text) {
		return false
	}
	if d.Exclude != nil && d.Exclude.MatchString(text) {
		return false
	}
	return true
}

// Parse runs every block of the document type against the text and returns
// the produced items plus all recoverable errors. The caller is expected to
// have checked Matches first.
func (d *DocumentType) Parse(file string, text string) (items []any, errs []error) {
	lines := SplitLines(text)

	docCtx := NewContext()
	for _, section := range d.Prelude {
		if err := section.parse(file, docCtx, lines, 0, len(lines)-1, docCtx, docCtx); err != nil {
			// Without its document context the type cannot interpret any
			// block reliably; give up on this type, keep the diagnostic.
			return nil, []error{err}
		}
	}

	// collect every block's start-line matches once, so each block can be
	// bounded by its siblings' markers
	startLines := make([][]int, len(d.Blocks))
	for i, block := range d.Blocks {
		for n, line := range lines {
			if block.Start.matches(line) {
				startLines[i] = append(startLines[i], n)
			}
		}
	}

	for i, block := range d.Blocks {
		var siblings []int
		for j, starts := range startLines {
			if j != i {
				siblings = append(siblings, starts...)
			}
		}
		sort.Ints(siblings)
		blockItems, blockErrs := block.parse(file, docCtx, lines, siblings)
		items = append(items, blockItems...)
		errs = append(errs, blockErrs...)
	}
	return items, errs
}

// SplitLines splits a document body into lines, tolerating both Unix and
// Windows line endings.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
