package suggest

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bastiangx/topicserve/internal/utils"
	"github.com/bastiangx/topicserve/pkg/prefix"
	"github.com/charmbracelet/log"
)

// DefaultLimit is the number of suggestions the dropdown shows.
const DefaultLimit = 5

// Source tells where a suggestion came from.
type Source string

const (
	SourceKeyword Source = "keyword"
	SourceHistory Source = "history"
)

// Suggestion is one dropdown entry. Rank starts at 1.
type Suggestion struct {
	Word   string
	Source Source
	Rank   int
}

// Order decides how keyword matches are arranged before truncation.
type Order int

const (
	// OrderTraversal keeps the index's pre-order, insertion-ordered walk.
	OrderTraversal Order = iota
	// OrderAlphabetical sorts the matches by byte order.
	OrderAlphabetical
)

func (o Order) String() string {
	switch o {
	case OrderAlphabetical:
		return "alphabetical"
	default:
		return "traversal"
	}
}

// ParseOrder maps a config value onto an Order.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "traversal", "insertion":
		return OrderTraversal, nil
	case "alphabetical", "alpha":
		return OrderAlphabetical, nil
	}
	return OrderTraversal, fmt.Errorf("unknown suggestion order %q", s)
}

// Completer owns the keyword index of the current search session.
// All methods are safe for concurrent use.
type Completer struct {
	mu       sync.RWMutex
	index    *prefix.Index
	history  *TopicHistory
	order    Order
	requests int
	resets   int
	// cleared holds from Reset until the next AddKeywords; history stays
	// out of the dropdown meanwhile.
	cleared bool
}

// Option configures a Completer.
type Option func(*Completer)

// WithOrder sets the keyword ordering policy.
func WithOrder(o Order) Option {
	return func(c *Completer) { c.order = o }
}

// WithHistory appends previously searched topics when keywords run short.
func WithHistory(h *TopicHistory) Option {
	return func(c *Completer) { c.history = h }
}

// NewCompleter returns a Completer with an empty index.
func NewCompleter(opts ...Option) *Completer {
	c := &Completer{index: prefix.New()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset clears the keyword index.
func (c *Completer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index.Clear()
	c.cleared = true
	c.resets++
	log.Debug("Keyword index cleared", "resets", c.resets)
}

// AddKeywords inserts each keyword and returns the number of distinct keys stored.
func (c *Completer) AddKeywords(keywords []string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, kw := range keywords {
		c.index.Insert(kw)
	}
	c.cleared = false
	log.Debugf("Keyword index populated: %d inserted, %d distinct", len(keywords), c.index.Len())
	return c.index.Len()
}

// Keywords lists every stored keyword in traversal order.
func (c *Completer) Keywords() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index.FindSuggestions("")
}

// History returns the topic history, or nil.
func (c *Completer) History() *TopicHistory {
	return c.history
}

// Order returns the active ordering policy.
func (c *Completer) Order() Order {
	return c.order
}

// Complete answers one keystroke. Empty input hides the dropdown, and so does
// a cleared index that has not been refilled yet.
func (c *Completer) Complete(input string, limit int) []Suggestion {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if input == "" {
		return []Suggestion{}
	}

	c.mu.Lock()
	c.requests++
	matches := c.index.FindSuggestions(input)
	cleared := c.cleared
	c.mu.Unlock()

	if c.order == OrderAlphabetical {
		sort.Strings(matches)
	}

	filter := utils.NewSuggestionFilter()
	suggestions := make([]Suggestion, 0, limit)
	for _, w := range matches {
		if len(suggestions) >= limit {
			break
		}
		if !filter.ShouldInclude(w) {
			continue
		}
		suggestions = append(suggestions, Suggestion{Word: w, Source: SourceKeyword})
	}

	if len(suggestions) < limit && c.history != nil && !cleared {
		for _, entry := range c.history.Search(prefix.Normalize(input), limit) {
			if len(suggestions) >= limit {
				break
			}
			if !filter.ShouldInclude(entry.Topic) {
				continue
			}
			suggestions = append(suggestions, Suggestion{Word: entry.Topic, Source: SourceHistory})
		}
	}

	ranks := utils.CreateRankList(len(suggestions))
	for i := range suggestions {
		suggestions[i].Rank = int(ranks[i])
	}
	return suggestions
}

// Stats reports index and history counters.
func (c *Completer) Stats() map[string]int {
	c.mu.RLock()
	stats := map[string]int{
		"keywords": c.index.Len(),
		"requests": c.requests,
		"resets":   c.resets,
	}
	c.mu.RUnlock()

	if c.history != nil {
		for k, v := range c.history.Stats() {
			stats[k] = v
		}
	}
	return stats
}
