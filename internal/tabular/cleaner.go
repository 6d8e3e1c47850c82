package tabular

import (
	"strconv"
	"strings"
)

// nullTokens are cell values that mean "no data" in the handbooks. Compared
// case-insensitively after stripping.
var nullTokens = map[string]struct{}{
	"":    {},
	"-":   {},
	".":   {},
	"na":  {},
	"n/a": {},
}

// currencyPrefixes are markers that appear glued to rupee amounts in some
// handbook editions.
var currencyPrefixes = []string{"Rs.", "Rs", "₹"}

// CleanNumber converts one raw cell value to a float64. The second return
// value is false when the cell is absent: empty, a null token, or malformed
// beyond recovery. Malformed input is data loss, never an error.
func CleanNumber(raw string) (float64, bool) {
	s := strings.ReplaceAll(raw, " ", " ")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	for _, prefix := range currencyPrefixes {
		s = strings.ReplaceAll(s, prefix, "")
	}

	// Keep digits, a single leading minus, and at most one decimal point. A
	// minus anywhere else marks a range like "2023-24", which is not a number
	// and must become absent rather than a concatenated garbage value.
	var b strings.Builder
	dots := 0
	innerMinus := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			dots++
			b.WriteRune(r)
		case r == '-':
			if b.Len() > 0 {
				innerMinus = true
			} else {
				b.WriteRune(r)
			}
		}
	}
	cleaned := b.String()

	if _, null := nullTokens[strings.ToLower(strings.TrimSpace(s))]; null {
		return 0, false
	}
	if _, null := nullTokens[cleaned]; null {
		return 0, false
	}
	if dots > 1 || innerMinus {
		return 0, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
