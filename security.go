package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Security is the canonical record of a financial instrument referenced by
// extracted documents. Every identifier is optional: a fund confirmation may
// only carry a WKN, a broker JSON feed only a ticker. The identity cache
// guarantees at most one record per non-empty ISIN and per non-empty WKN.
type Security struct {
	ISIN     string `json:"isin,omitempty"`
	WKN      string `json:"wkn,omitempty"` // national identifier, WKN or equivalent
	Ticker   string `json:"ticker,omitempty"`
	Name     string `json:"name,omitempty"`
	Currency string `json:"currency,omitempty"`
}

func (s *Security) String() string {
	switch {
	case s == nil:
		return "<no security>"
	case s.ISIN != "":
		return s.ISIN
	case s.WKN != "":
		return s.WKN
	case s.Ticker != "":
		return s.Ticker
	}
	return s.Name
}

// Peer is the counterparty of an account transfer, identified by IBAN when
// the statement carries one, otherwise by name only.
type Peer struct {
	Name string `json:"name,omitempty"`
	IBAN string `json:"iban,omitempty"`
}

func (p *Peer) String() string {
	if p == nil {
		return "<no peer>"
	}
	if p.IBAN != "" {
		return p.IBAN
	}
	return p.Name
}

// isinRegex checks the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// ValidateISIN checks if a string is a validly formatted ISIN.
// It returns nil if valid, or a descriptive error if invalid.
func ValidateISIN(isin string) error {
	// 1. Length validation
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}

	// 2. Format validation
	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}

	// 3. Convert letters to numbers for check digit calculation
	var numericStr strings.Builder
	for _, char := range isin[:11] {
		if char >= 'A' && char <= 'Z' {
			numericStr.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			numericStr.WriteRune(char)
		}
	}

	// 4. Apply a variation of the Luhn algorithm
	sum := 0
	isSecond := true
	digits := numericStr.String()
	for i := len(digits) - 1; i >= 0; i-- {
		digit, _ := strconv.Atoi(string(digits[i]))

		if isSecond {
			digit *= 2
		}

		sum += (digit / 10) + (digit % 10)
		isSecond = !isSecond
	}

	// 5. Validate the check digit
	expectedCheckDigit := (10 - (sum % 10)) % 10
	actualCheckDigit, _ := strconv.Atoi(string(isin[11]))

	if expectedCheckDigit != actualCheckDigit {
		return fmt.Errorf("invalid check digit: expected %d, got %d", expectedCheckDigit, actualCheckDigit)
	}

	return nil
}
