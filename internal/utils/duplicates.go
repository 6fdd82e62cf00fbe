package utils

import (
	"strings"
)

// SuggestionFilter drops words already seen in one suggestion list.
// It is not safe for concurrent use; build one per request.
type SuggestionFilter struct {
	seenWords map[string]bool
}

// NewSuggestionFilter creates an empty filter.
func NewSuggestionFilter() *SuggestionFilter {
	return &SuggestionFilter{seenWords: make(map[string]bool)}
}

// ShouldInclude reports whether word is new, remembering it case-insensitively
func (f *SuggestionFilter) ShouldInclude(word string) bool {
	lowerWord := strings.ToLower(word)
	if f.seenWords[lowerWord] {
		return false
	}
	f.seenWords[lowerWord] = true
	return true
}
