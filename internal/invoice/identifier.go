package invoice

import (
	"fmt"
	"regexp"
	"strings"
)

// Functional identifiers are integers, but spreadsheets often hand them over as floats ("123.0").
var numericRegex = regexp.MustCompile(`^[+-]?(\d+)(?:\.(\d+))?$`)

// NormalizeIdentifier returns the canonical form of a functional identifier cell.
// Blank cells become "", numeric values lose a zero fractional part ("123.0" -> "123")
// and leading zeros, and a non-zero fractional part is kept ("123.4" stays "123.4").
// Non-numeric values are only trimmed.
func NormalizeIdentifier(raw string) string {
	value := strings.TrimSpace(raw)
	if canonical, ok := canonicalNumber(value); ok {
		return canonical
	}
	return value
}

// NormalizeQuery canonicalizes a requested identifier; it must be numeric
func NormalizeQuery(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	canonical, ok := canonicalNumber(value)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
	}
	return canonical, nil
}

func canonicalNumber(value string) (string, bool) {
	m := numericRegex.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}

	sign := ""
	if strings.HasPrefix(value, "-") {
		sign = "-"
	}

	integer := strings.TrimLeft(m[1], "0")
	if integer == "" {
		integer = "0"
	}

	fraction := strings.TrimRight(m[2], "0")
	if integer == "0" && fraction == "" {
		sign = ""
	}
	if fraction == "" {
		return sign + integer, true
	}
	return sign + integer + "." + fraction, true
}
