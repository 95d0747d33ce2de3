package parser

import (
	"strconv"
	"strings"
)

// Bare digit strings at least this long are read as an integer number of
// cents ("12345" -> 123.45); shorter ones are whole units ("99" -> 99.0).
const minCentsDigits = 3

var currencyStripper = strings.NewReplacer("R$", "", "€", "", "$", "", " ", "")

// ParsePrice parses a raw price string into a numeric value and an ISO-4217
// currency code. The currency is detected from the first matching symbol in
// the order R$ -> BRL, € -> EUR, $ -> USD; an empty code means no symbol was
// found. A nil price means the cleaned string was not numeric. ParsePrice
// never fails: unparsable input yields (nil, currency-if-detected).
func ParsePrice(raw string) (*float64, string) {
	raw = strings.TrimSpace(raw)

	currency := ""
	switch {
	case strings.Contains(raw, "R$"):
		currency = "BRL"
	case strings.Contains(raw, "€"):
		currency = "EUR"
	case strings.Contains(raw, "$"):
		currency = "USD"
	}

	cleaned := currencyStripper.Replace(raw)

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")
	switch {
	case hasComma && hasDot:
		// The later-occurring separator is the decimal point.
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	if isDigits(cleaned) && len(cleaned) >= minCentsDigits {
		value, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil, currency
		}
		value /= 100
		return &value, currency
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, currency
	}
	if value == 0 {
		value = 0 // normalize -0
	}
	return &value, currency
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
