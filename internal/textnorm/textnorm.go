// Package textnorm canonicalizes free text for rule comparison.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC, lowercases, collapses whitespace runs to a single
// space and trims. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	// lowercasing can produce sequences that are not NFKC (e.g. U+0130).
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizePtr treats a nil pointer as the empty string.
func NormalizePtr(s *string) string {
	if s == nil {
		return ""
	}
	return Normalize(*s)
}
