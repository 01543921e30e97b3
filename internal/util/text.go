package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// NormalizeKey reduces text to a comparison key: NFKC, case-folded,
// punctuation dropped and whitespace collapsed. Used for duplicate
// detection and substring matching across differently formatted text.
func NormalizeKey(s string) string {
	s = folder.String(norm.NFKC.String(s))

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}

// Compact removes all whitespace from a normalized key, so "Acme Health"
// and "acmehealth.com" can be matched against each other.
func Compact(s string) string {
	return strings.ReplaceAll(NormalizeKey(s), " ", "")
}

// ContainsFold reports whether haystack contains needle after normalization
// of both. An empty needle never matches.
func ContainsFold(haystack, needle string) bool {
	n := NormalizeKey(needle)
	if n == "" {
		return false
	}
	return strings.Contains(" "+NormalizeKey(haystack)+" ", " "+n+" ") ||
		strings.Contains(Compact(haystack), strings.ReplaceAll(n, " ", ""))
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
