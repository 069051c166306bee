package biz

import (
	"strconv"
	"strings"
)

// Slugify derives the canonical slug of a movie: characters other than ASCII
// letters, digits, spaces, underscores and hyphens are dropped, the rest is
// lower-cased, each run of spaces becomes one hyphen and "-{year}" is appended.
func Slugify(title string, year int) string {
	var b strings.Builder
	b.Grow(len(title) + 5)

	inSpace := false
	for _, r := range title {
		switch {
		case r == ' ':
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			// dropped characters do not break a run of spaces
			continue
		}
		inSpace = false
	}

	b.WriteByte('-')
	b.WriteString(strconv.Itoa(year))
	return b.String()
}
