package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicHistoryRecordAndSearch(t *testing.T) {
	h := NewTopicHistory(10)
	assert.Equal(t, 1, h.Record("Global Economy"))
	assert.Equal(t, 2, h.Record("  global economy "))
	assert.Equal(t, 1, h.Record("Global Warming"))
	assert.Equal(t, 0, h.Record("   "))

	got := h.Search("global", 0)
	assert.Equal(t, []HistoryEntry{
		{Topic: "global economy", Count: 2},
		{Topic: "global warming", Count: 1},
	}, got)
	assert.Empty(t, h.Search("z", 0))
	assert.Len(t, h.Search("g", 1), 1)
	assert.Equal(t, 2, h.Len())
}

func TestTopicHistoryEvictsLeastRecentlyUsed(t *testing.T) {
	h := NewTopicHistory(2)
	h.Record("alpha")
	h.Record("beta")
	h.Search("alpha", 0)
	h.Record("gamma")

	assert.Equal(t, 2, h.Len())
	assert.Empty(t, h.Search("beta", 0))
	assert.Len(t, h.Search("alpha", 0), 1)
	assert.Len(t, h.Search("gamma", 0), 1)
}

func TestTopicHistoryPopulate(t *testing.T) {
	h := NewTopicHistory(2)
	h.Populate(map[string]int{
		"Elections": 9,
		"economy":   5,
		"energy":    1,
		"":          3,
	})

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []HistoryEntry{
		{Topic: "elections", Count: 9},
		{Topic: "economy", Count: 5},
	}, h.Search("e", 0))
	assert.Equal(t, 2, h.Stats()["maxHistoryTopics"])
}

func TestTopicHistoryPopulateSumsCaseVariants(t *testing.T) {
	h := NewTopicHistory(10)
	h.Populate(map[string]int{"AI": 3, "ai": 2, " Ai ": 1})

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, []HistoryEntry{{Topic: "ai", Count: 6}}, h.Search("a", 0))
}
