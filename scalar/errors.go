package scalar

import "fmt"

// MalformedScalarError reports a number string that did not parse under the
// declared locale. It keeps the original input so the error list shown to
// the user points at the offending text.
type MalformedScalarError struct {
	Input  string
	Locale string
	Err    error
}

func (e *MalformedScalarError) Error() string {
	return fmt.Sprintf("malformed number %q for locale %s: %v", e.Input, e.Locale, e.Err)
}

func (e *MalformedScalarError) Unwrap() error { return e.Err }

// NoMatchingDateFormatError reports a date string that none of the locale's
// candidate layouts could fully consume.
type NoMatchingDateFormatError struct {
	Input  string
	Locale string
}

func (e *NoMatchingDateFormatError) Error() string {
	return fmt.Sprintf("no date format of locale %s matches %q", e.Locale, e.Input)
}
