// Package suggest turns the session keyword index into the ranked dropdown
// shown while the user types a topic.
package suggest

// ICompleter defines the interface for topic completion engines
type ICompleter interface {
	// Complete returns at most limit suggestions for the typed input
	Complete(input string, limit int) []Suggestion

	// Reset empties the keyword index before a new search
	Reset()

	// AddKeywords inserts the keywords returned by an analysis, in order
	AddKeywords(keywords []string) int

	// Stats returns counters about the index and history
	Stats() map[string]int
}
