package pattern

import "fmt"

// Boundary declares where a block match attempt's scope ends. The rule is
// explicit per block: recipes inherited from different banks disagree on it,
// so the engine never infers one.
type Boundary int

// In both modes the scope is additionally cut at the next line matching a
// sibling block's start pattern: a block never reads into a sibling's text.
const (
	// ToNextStart scopes an attempt from its start line to the line before
	// the next start-line match of the same block (or end of document).
	ToNextStart Boundary = iota
	// ToEndOfDocument scopes every attempt to the end of the document.
	ToEndOfDocument
)

// Block is one repeatable structural unit: a start-line pattern delimiting
// the scope in which its Sections are attempted, a factory for the empty
// record the sections fill in, and a wrap function that finalizes the record
// into an emitted item or discards it.
type Block struct {
	// Start opens a new match attempt on every line it matches.
	Start Line
	// End, when set, closes the attempt scope at its first match; an
	// attempt whose scope holds no End match is skipped entirely.
	End Line
	// MaxLines caps the attempt scope; it truncates, never extends.
	MaxLines int
	Boundary Boundary

	// Subject produces the empty in-progress record for one attempt.
	Subject func() any
	// Sections are attempted strictly in order; a required section that
	// fails aborts the attempt.
	Sections []*Section
	// Wrap validates and finalizes the record. Returning a nil item is a
	// legitimate veto (for instance a zero-amount tax line), not an error.
	Wrap func(target any, ctx *Context) (any, error)
}

// parse scans all lines for start-line matches and runs one match attempt
// per occurrence. Items from successful attempts and recoverable errors
// from failed ones are both returned: one bad attempt never discards the
// good ones.
func (b *Block) parse(file string, docCtx *Context, lines []string, siblingStarts []int) (items []any, errs []error) {
	if b.Wrap == nil {
		return nil, []error{fmt.Errorf("%s: block has no wrap function", file)}
	}

	var starts []int
	for i, line := range lines {
		if b.Start.matches(line) {
			starts = append(starts, i)
		}
	}

	for k, startLine := range starts {
		endLine := len(lines) - 1
		if b.Boundary == ToNextStart && k+1 < len(starts) {
			endLine = starts[k+1] - 1
		}
		// whatever the boundary mode, the scope never crosses a sibling
		// block's own start marker
		for _, s := range siblingStarts {
			if s > startLine && s-1 < endLine {
				endLine = s - 1
				break
			}
		}

		if !b.End.IsZero() {
			closed := -1
			for i := startLine; i <= endLine; i++ {
				if b.End.matches(lines[i]) {
					closed = i
					break
				}
			}
			if closed < 0 {
				continue
			}
			endLine = closed
		}

		if b.MaxLines > 0 && endLine > startLine+b.MaxLines-1 {
			endLine = startLine + b.MaxLines - 1
		}

		item, err := b.attempt(file, docCtx, lines, startLine, endLine)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if item != nil {
			items = append(items, item)
		}
	}
	return items, errs
}

func (b *Block) attempt(file string, docCtx *Context, lines []string, start, end int) (any, error) {
	ctx := NewContext()
	target := b.Subject()

	for _, section := range b.Sections {
		if err := section.parse(file, docCtx, lines, start, end, ctx, target); err != nil {
			return nil, err
		}
	}
	return b.Wrap(target, ctx)
}
