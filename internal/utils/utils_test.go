package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidTopic(t *testing.T) {
	testCases := []struct {
		input    string
		maxLen   int
		expected bool
	}{
		{"Artificial Intelligence Breakthroughs", 40, true},
		{"COP29", 40, true},
		{"", 40, false},
		{"2024", 40, true},
		{"zzzz", 40, true},
		{"ab", 40, true},
		{"tab\there", 40, false},
		{"nul\x00byte", 40, false},
		{"a very long topic name that goes on and on", 40, false},
		{"a very long topic name that goes on and on", 0, true},
		{"சென்னை வெள்ளம்", 14, true},
		{"சென்னை வெள்ளம்", 13, false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsValidTopic(tc.input, tc.maxLen))
		})
	}
}

func TestCleanTopic(t *testing.T) {
	assert.Equal(t, "global economy", CleanTopic("  global \t economy \n"))
	assert.Equal(t, "", CleanTopic("   "))
}

func TestFormatWithCommas(t *testing.T) {
	assert.Equal(t, "0", FormatWithCommas(0))
	assert.Equal(t, "999", FormatWithCommas(999))
	assert.Equal(t, "1,000", FormatWithCommas(1000))
	assert.Equal(t, "1,234,567", FormatWithCommas(1234567))
	assert.Equal(t, "-12,345", FormatWithCommas(-12345))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "head…", Truncate("headline", 5))
	assert.Equal(t, "…", Truncate("headline", 1))
}

func TestSuggestionFilter(t *testing.T) {
	f := NewSuggestionFilter()
	assert.True(t, f.ShouldInclude("AI"))
	assert.False(t, f.ShouldInclude("ai"))
	assert.True(t, f.ShouldInclude("Chips"))
	assert.False(t, f.ShouldInclude("chips"))
}

func TestCreateRankList(t *testing.T) {
	assert.Equal(t, []uint16{1, 2, 3}, CreateRankList(3))
	assert.Empty(t, CreateRankList(0))
}

func TestTOMLRoundTripWithRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	type section struct {
		Limit int    `toml:"limit"`
		Order string `toml:"order"`
	}
	require.NoError(t, SaveTOMLFile(map[string]section{"suggest": {Limit: 5, Order: "traversal"}}, path))
	assert.True(t, FileExists(path))

	data, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	sec, ok := ExtractSection(data, "suggest")
	require.True(t, ok)

	limit, ok := ExtractInt64(sec, "limit")
	assert.True(t, ok)
	assert.Equal(t, 5, limit)
	order, ok := ExtractString(sec, "order")
	assert.True(t, ok)
	assert.Equal(t, "traversal", order)
	_, ok = ExtractBool(sec, "limit")
	assert.False(t, ok)
}
