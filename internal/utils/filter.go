package utils

import (
	"strings"
	"unicode"
)

// CleanTopic trims the topic and collapses inner whitespace runs to one space.
func CleanTopic(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsValidTopic reports whether a cleaned topic can be sent to the search
// service: non-empty, at most maxLen runes and free of control characters.
// maxLen <= 0 disables the length check.
func IsValidTopic(s string, maxLen int) bool {
	if s == "" {
		return false
	}
	if maxLen > 0 && len([]rune(s)) > maxLen {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
