package provider

import (
	"regexp"
	"strings"
)

var (
	// markupChars are the emphasis/heading/code characters stripped from replies.
	markupChars = strings.NewReplacer("`", "", "*", "", "_", "", "#", "")
	// blankRunRE matches a newline followed by one or more blank (or
	// whitespace-only) lines.
	blankRunRE = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
)

// Sanitize guarantees plain-text output: line endings are normalized,
// markdown markers are removed, runs of blank lines collapse to a single
// newline, and surrounding whitespace is trimmed.
//
// Sanitize(Sanitize(s)) == Sanitize(s) for every s.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = markupChars.Replace(s)
	s = blankRunRE.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
