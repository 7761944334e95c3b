package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	yearRegex    = regexp.MustCompile(`^\d{4}$`)
	controlRegex = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateYear validates a four digit year such as "2026"
func ValidateYear(year string) error {
	if !yearRegex.MatchString(year) {
		return fmt.Errorf("invalid year: %q", year)
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlRegex.ReplaceAllString(s, "")
}

// FoldAccents removes diacritics, so "Março" becomes "Marco"
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// NormalizeMonthToken lowercases, trims and folds accents of a month name
func NormalizeMonthToken(month string) string {
	return FoldAccents(strings.ToLower(strings.TrimSpace(month)))
}
