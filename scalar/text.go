package scalar

import (
	"regexp"
	"strings"
)

// \s alone is ASCII; \p{Zs} picks up the non-breaking and narrow spaces
// PDF text extraction leaves behind.
var multipleBlanks = regexp.MustCompile(`[\s\p{Zs}]+`)

// Strip trims a captured value and collapses internal runs of whitespace,
// including the non-breaking spaces PDF text extraction leaves behind.
func Strip(s string) string {
	return strings.TrimSpace(ReplaceMultipleBlanks(s))
}

// ReplaceMultipleBlanks collapses every run of whitespace to a single space.
func ReplaceMultipleBlanks(s string) string {
	return multipleBlanks.ReplaceAllString(s, " ")
}

// StripBlanks removes all whitespace. Some statements letter-space words
// ("A k t i e n"); captured that way, the binding is only usable once the
// blanks are gone.
func StripBlanks(s string) string {
	return multipleBlanks.ReplaceAllString(s, "")
}
