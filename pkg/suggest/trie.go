package suggest

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// collectEntries visits the subtree under lowerPrefix and returns its topics with counts.
func collectEntries(trie *patricia.Trie, lowerPrefix string) []HistoryEntry {
	if trie == nil {
		return []HistoryEntry{}
	}

	entries := []HistoryEntry{}
	err := trie.VisitSubtree(patricia.Prefix(lowerPrefix), func(p patricia.Prefix, item patricia.Item) error {
		count := 1
		switch v := item.(type) {
		case int:
			count = v
		case int64:
			count = int(v)
		default:
			log.Errorf("Unknown item type: %T for topic %s", item, p)
		}

		entries = append(entries, HistoryEntry{
			Topic: string(p),
			Count: count,
		})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting history subtree: %v", err)
	}
	return entries
}

// sortEntries orders by count descending, then topic ascending.
func sortEntries(entries []HistoryEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Topic < entries[j].Topic
	})
}
