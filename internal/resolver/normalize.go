package resolver

import (
	"regexp"
	"strings"
)

var (
	punctRe     = regexp.MustCompile("[.\\x{200d}\\-]")
	spaceRe     = regexp.MustCompile(`\s+`)
	nonLetterRe = regexp.MustCompile(`[^a-zA-Z ]`)
)

// Normalize canonicalizes whitespace, punctuation and case. Non-breaking
// spaces become spaces, periods, hyphens and zero-width joiners become
// spaces, runs of whitespace collapse to one space, and the result is
// trimmed and lowercased. Idempotent.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = punctRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// InitialsKey builds the initials-plus-surname key cricsheet names follow:
// "Rohit Gurunath Sharma" becomes "rg sharma". A single token lowercases
// as-is; an empty input yields "".
func InitialsKey(s string) string {
	s = strings.TrimSpace(nonLetterRe.ReplaceAllString(s, " "))
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return strings.ToLower(parts[0])
	}

	var initials strings.Builder
	for _, p := range parts[:len(parts)-1] {
		initials.WriteString(strings.ToLower(p[:1]))
	}
	return initials.String() + " " + strings.ToLower(parts[len(parts)-1])
}
