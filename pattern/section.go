package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// Line is one whole-line matcher inside a Section.
type Line struct {
	rx *regexp.Regexp
}

// Match compiles a whole-line matcher from a regular expression with named
// capture groups. The expression must match the entire line; recipes anchor
// their data on exact line shapes, not substrings.
func Match(expr string) Line {
	return Line{rx: regexp.MustCompile(`^(?:` + expr + `)$`)}
}

// Find is Match for anchor lines: fixed text (or near-fixed text with
// trailing noise) that locates a section without capturing anything.
func Find(text string) Line { return Match(text) }

// IsZero reports whether the line matcher is unset.
func (l Line) IsZero() bool { return l.rx == nil }

func (l Line) matches(s string) bool { return l.rx.MatchString(s) }

// captures copies the named groups that participated in the match of s into
// values, restricted to the declared capture names.
func (l Line) captures(s string, declared []string, values map[string]string) bool {
	m := l.rx.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	for _, name := range declared {
		if i := l.rx.SubexpIndex(name); i >= 0 && m[i] != "" {
			values[name] = m[i]
		}
	}
	return true
}

// Section is one reusable matching rule: an ordered run of line matchers
// whose named captures are merged into a single Context passed to Assign.
//
// A Section either fully binds (all lines matched, all declared captures
// present) or does not match at all; a partial binding aborts the section.
// An Optional section that does not match contributes nothing. A Repeats
// section restarts its line run after each full match and is satisfied once
// it matched at least once.
type Section struct {
	// Captures declares the names that must be bound when the section
	// matches. Assign may rely on every one of them being present.
	Captures []string
	Lines    []Line
	Optional bool
	Repeats  bool

	// DocValues names document-context bindings merged into the section's
	// view on a successful match. A missing document value fails the
	// section like an unmatched line.
	DocValues []string

	// Assign applies the completed bindings to the in-progress record. An
	// error aborts the enclosing block attempt.
	Assign func(v *Context, target any) error

	// Alternatives makes this section a first-match-wins group: each
	// alternative is tried in order and the first one that fully binds is
	// used. Lines and Assign of the group itself are ignored.
	Alternatives []*Section
}

// SectionError reports a required section that did not match within a block
// attempt's scope. It is recoverable at document granularity.
type SectionError struct {
	File     string
	Captures []string // the section's declared capture names
	Start    int      // first line of the attempt scope, 1-based
	End      int      // last line of the attempt scope, 1-based
	Reason   string
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("%s: section [%s] not matched in lines %d-%d: %s",
		e.File, strings.Join(e.Captures, " "), e.Start, e.End, e.Reason)
}

// parse attempts the section against lines[start..end] inclusive. ctx is the
// attempt context whose typed side channel is shared with the assignment
// view. docCtx carries document-scoped bindings.
func (s *Section) parse(file string, docCtx *Context, lines []string, start, end int, ctx *Context, target any) error {
	if len(s.Alternatives) > 0 {
		return s.parseOneOf(file, docCtx, lines, start, end, ctx, target)
	}

	values := make(map[string]string)
	patternNo := 0
	matchedOnce := false

	for i := start; i <= end && patternNo < len(s.Lines); i++ {
		if !s.Lines[patternNo].captures(lines[i], s.Captures, values) {
			continue
		}
		patternNo++
		if patternNo < len(s.Lines) {
			continue
		}

		// All lines of the section matched: the binding must be complete.
		if len(values) != len(s.Captures) {
			return &SectionError{File: file, Captures: s.Captures, Start: start + 1, End: end + 1,
				Reason: fmt.Sprintf("bound %s", boundNames(values))}
		}
		order := make([]string, 0, len(s.Captures)+len(s.DocValues))
		order = append(order, s.Captures...)
		for _, name := range s.DocValues {
			v, ok := docCtx.Lookup(name)
			if !ok {
				return &SectionError{File: file, Captures: s.Captures, Start: start + 1, End: end + 1,
					Reason: fmt.Sprintf("document value %q not available", name)}
			}
			values[name] = v
			order = append(order, name)
		}
		if err := s.Assign(ctx.view(order, values), target); err != nil {
			return err
		}
		if !s.Repeats {
			return nil
		}
		// Search for the next occurrence with a fresh line run. Bindings
		// accumulate across occurrences, the last one winning per name.
		matchedOnce = true
		patternNo = 0
	}

	if matchedOnce || s.Optional {
		return nil
	}
	return &SectionError{File: file, Captures: s.Captures, Start: start + 1, End: end + 1,
		Reason: fmt.Sprintf("matched %d of %d lines", patternNo, len(s.Lines))}
}

func (s *Section) parseOneOf(file string, docCtx *Context, lines []string, start, end int, ctx *Context, target any) error {
	var reasons []string
	for _, alt := range s.Alternatives {
		err := alt.parse(file, docCtx, lines, start, end, ctx, target)
		if err == nil {
			return nil
		}
		reasons = append(reasons, err.Error())
	}
	if s.Optional {
		return nil
	}
	return &SectionError{File: file, Captures: s.Captures, Start: start + 1, End: end + 1,
		Reason: fmt.Sprintf("none of %d alternatives matched: %s", len(s.Alternatives), strings.Join(reasons, "; "))}
}

func boundNames(values map[string]string) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	return "[" + strings.Join(names, " ") + "]"
}
