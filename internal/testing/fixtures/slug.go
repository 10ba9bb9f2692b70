package fixtures

import (
	"strings"
	"unicode"
)

// Slugify converts a title to a lowercase URL-safe slug. Runs of
// non-alphanumeric characters collapse to a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// UniqueSlug derives a slug from a title and appends a random suffix so
// two fixtures created from the same title never collide on the unique
// slug column.
func UniqueSlug(title string) string {
	base := Slugify(title)
	if base == "" {
		base = "untitled"
	}
	return base + "-" + randomID()[:6]
}
