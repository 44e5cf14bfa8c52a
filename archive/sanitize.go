// Package archive writes transcript artifacts and the run index to the
// output directory.
package archive

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSanitizedLen bounds the title portion of artifact filenames.
const maxSanitizedLen = 100

var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeTitle turns a free-text video title into a filename-safe token:
// combining marks are folded away, the result is lowercased, spaces become
// underscores, anything outside [a-z0-9_-] is dropped, and the result is
// truncated to 100 characters. Sanitizing an already sanitized string is a
// no-op.
func SanitizeTitle(title string) string {
	folded, _, err := transform.String(foldTransformer, title)
	if err != nil {
		folded = title
	}

	folded = strings.ToLower(folded)
	folded = strings.ReplaceAll(folded, " ", "_")

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	s := b.String()
	if len(s) > maxSanitizedLen {
		s = s[:maxSanitizedLen]
	}
	return s
}
