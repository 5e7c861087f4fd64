package normalize

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// Code trims whitespace, uppercases, and strips non-alphanumeric
// characters from a procedure code (CUPS codes are plain alphanumerics).
// Returns "" when nothing usable remains.
func Code(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return nonAlphanumeric.ReplaceAllString(strings.ToUpper(s), "")
}
