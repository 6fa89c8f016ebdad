package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SanitizeTitle rewrites a chapter title into a filesystem-safe form. ASCII
// letters, digits, space, hyphen, and underscore are kept; every other rune
// becomes an underscore, and runs of underscores collapse to one.
//
// The function is idempotent: SanitizeTitle(SanitizeTitle(s)) == SanitizeTitle(s).
func SanitizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	lastUnderscore := false
	for _, r := range title {
		if !isTitleRune(r) {
			r = '_'
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isTitleRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '-', r == '_':
		return true
	default:
		return false
	}
}

// FoldDiacritics strips combining marks so "Café" becomes "Cafe". Runes that
// have no decomposition are returned unchanged.
func FoldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
