package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims s and collapses every run of whitespace to one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return b.String()
}

// NormalizeKey is the case-insensitive comparison form of a free-text value
// ("  New   York " and "new york" share a key).
func NormalizeKey(s string) string {
	return strings.ToLower(TrimAndNormalize(s))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
