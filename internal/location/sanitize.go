// Package location turns titles into filesystem-safe names and derives the
// per-job output directory.
package location

import (
	"regexp"
	"strings"
)

// DefaultMaxLength bounds sanitized file names.
const DefaultMaxLength = 50

var (
	reIllegal    = regexp.MustCompile(`[\\/*?:"<>|]`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// Sanitize strips path-illegal characters, replaces whitespace runs with a
// single underscore and truncates the result to maxLen runes. A non-positive
// maxLen means DefaultMaxLength.
func Sanitize(name string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	s := reIllegal.ReplaceAllString(name, "")
	s = reWhitespace.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)

	runes := []rune(s)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	return string(runes)
}
