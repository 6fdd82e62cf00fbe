package suggest

import (
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// HistoryEntry is a previously searched topic and how often it was searched.
type HistoryEntry struct {
	Topic string
	Count int
}

// TopicHistory keeps the most recently used search topics in a patricia trie
// keyed by the lowercased topic. The least recently used topic is evicted once
// maxTopics is reached.
type TopicHistory struct {
	trie        *patricia.Trie
	accessTime  map[string]int64
	accessCount int64
	hits        int
	maxTopics   int
	mu          sync.RWMutex
}

// NewTopicHistory creates an empty history holding at most maxTopics topics.
func NewTopicHistory(maxTopics int) *TopicHistory {
	if maxTopics <= 0 {
		maxTopics = 1
	}
	return &TopicHistory{
		trie:       patricia.NewTrie(),
		accessTime: make(map[string]int64, maxTopics),
		maxTopics:  maxTopics,
	}
}

func historyKey(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

// Record counts one search for topic and returns the new count.
func (th *TopicHistory) Record(topic string) int {
	key := historyKey(topic)
	if key == "" {
		return 0
	}

	th.mu.Lock()
	defer th.mu.Unlock()

	count := 1
	if item := th.trie.Get(patricia.Prefix(key)); item != nil {
		count = item.(int) + 1
	} else if len(th.accessTime) >= th.maxTopics {
		th.evictLRU()
	}
	th.trie.Set(patricia.Prefix(key), count)
	th.accessTime[key] = th.nextAccessTime()
	return count
}

// Populate loads stored counts, e.g. from the database at startup.
func (th *TopicHistory) Populate(counts map[string]int) {
	th.mu.Lock()
	defer th.mu.Unlock()

	// rows differing only in case share a key
	merged := make(map[string]int, len(counts))
	for topic, n := range counts {
		key := historyKey(topic)
		if key == "" || n <= 0 {
			continue
		}
		merged[key] += n
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	// least searched first, so heavy topics survive eviction
	sort.Slice(keys, func(i, j int) bool {
		if merged[keys[i]] != merged[keys[j]] {
			return merged[keys[i]] < merged[keys[j]]
		}
		return keys[i] > keys[j]
	})

	loaded := 0
	for _, key := range keys {
		if th.trie.Get(patricia.Prefix(key)) == nil && len(th.accessTime) >= th.maxTopics {
			th.evictLRU()
		}
		th.trie.Set(patricia.Prefix(key), merged[key])
		th.accessTime[key] = th.nextAccessTime()
		loaded++
	}
	log.Debugf("Populated topic history with %d topics", loaded)
}

// Search returns topics starting with lowerPrefix, most searched first.
func (th *TopicHistory) Search(lowerPrefix string, limit int) []HistoryEntry {
	th.mu.Lock()
	defer th.mu.Unlock()

	entries := collectEntries(th.trie, lowerPrefix)
	sortEntries(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for _, e := range entries {
		th.accessTime[e.Topic] = th.nextAccessTime()
	}
	if len(entries) > 0 {
		th.hits++
	}
	return entries
}

// Len returns the number of remembered topics.
func (th *TopicHistory) Len() int {
	th.mu.RLock()
	defer th.mu.RUnlock()
	return len(th.accessTime)
}

func (th *TopicHistory) Stats() map[string]int {
	th.mu.RLock()
	defer th.mu.RUnlock()

	return map[string]int{
		"historyTopics":    len(th.accessTime),
		"maxHistoryTopics": th.maxTopics,
		"historyHits":      th.hits,
	}
}

func (th *TopicHistory) nextAccessTime() int64 {
	th.accessCount++
	return th.accessCount
}

func (th *TopicHistory) evictLRU() {
	var oldestTopic string
	var oldestTime int64 = 9223372036854775807

	for topic, accessTime := range th.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestTopic = topic
		}
	}

	if oldestTopic != "" {
		th.trie.Delete(patricia.Prefix(oldestTopic))
		delete(th.accessTime, oldestTopic)
		log.Debugf("Evicted topic '%s' from history", oldestTopic)
	}
}
