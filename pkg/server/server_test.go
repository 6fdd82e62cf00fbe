package server

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/bastiangx/topicserve/pkg/news"
	"github.com/bastiangx/topicserve/pkg/session"
	"github.com/bastiangx/topicserve/pkg/store"
	"github.com/bastiangx/topicserve/pkg/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type stubSearcher struct{}

func (stubSearcher) FetchNews(_ context.Context, topic string) ([]news.RawArticle, error) {
	return []news.RawArticle{{Title: "Story about " + topic, URI: "https://example.com/" + topic}}, nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) RankAndAnalyze(_ context.Context, topic string, _ []news.RawArticle) (*news.Analysis, error) {
	return &news.Analysis{
		Articles: []news.Article{
			{ID: "low", Title: "Low", RelevanceScore: 10},
			{ID: "high", Title: "High", RelevanceScore: 90},
		},
		Keywords: []string{"Climate", "Climate Policy", "Carbon"},
		Graph: news.GraphData{
			Nodes: []news.GraphNode{{ID: topic, Group: "topic"}},
			Links: []news.GraphLink{},
		},
	}, nil
}

func newTestSession() *session.Controller {
	return session.New(suggest.NewCompleter(), stubSearcher{}, stubAnalyzer{})
}

func encodeRequests(t *testing.T, reqs ...Request) *bytes.Buffer {
	t.Helper()
	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}
	return &in
}

func runServer(t *testing.T, st Store, reqs ...Request) *msgpack.Decoder {
	t.Helper()
	var out bytes.Buffer
	srv := NewServerWithIO(newTestSession(), st, Options{MaxLimit: 2, MaxPrefix: 10}, encodeRequests(t, reqs...), &out)
	require.NoError(t, srv.Start(context.Background()))

	dec := msgpack.NewDecoder(&out)
	var ready ReadyResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)
	assert.NotEmpty(t, ready.Session)
	return dec
}

func TestSuggestAndSearchFlow(t *testing.T) {
	dec := runServer(t, nil,
		Request{ID: "1", Action: ActionSuggest, Prefix: "c"},
		Request{ID: "2", Action: ActionSearch, Topic: "  Climate   change "},
		Request{ID: "3", Prefix: "cl", Limit: 10},
		Request{ID: "4", Action: ActionSelect, Index: 2},
		Request{ID: "5", Action: ActionSelect, Index: 1},
	)

	var empty SuggestResponse
	require.NoError(t, dec.Decode(&empty))
	assert.Equal(t, "1", empty.ID)
	assert.Empty(t, empty.Suggestions)
	assert.Zero(t, empty.Count)

	var search SearchResponse
	require.NoError(t, dec.Decode(&search))
	assert.Equal(t, "2", search.ID)
	assert.Equal(t, "Climate change", search.Topic)
	require.Len(t, search.Articles, 2)
	assert.Equal(t, "high", search.Articles[0].ID)
	assert.Equal(t, 2, search.Count)
	assert.Equal(t, []string{"Climate", "Climate Policy", "Carbon"}, search.Keywords)

	// limit 10 is capped at MaxLimit 2
	var sugg SuggestResponse
	require.NoError(t, dec.Decode(&sugg))
	assert.Equal(t, []Suggestion{
		{Word: "climate", Rank: 1, Source: "keyword"},
		{Word: "climate policy", Rank: 2, Source: "keyword"},
	}, sugg.Suggestions)
	assert.GreaterOrEqual(t, sugg.TimeTaken, int64(0))

	var selected SearchResponse
	require.NoError(t, dec.Decode(&selected))
	assert.Equal(t, "4", selected.ID)
	assert.Equal(t, "climate policy", selected.Topic)

	// the list is consumed by the search it started
	var stale ErrorResponse
	require.NoError(t, dec.Decode(&stale))
	assert.Equal(t, "5", stale.ID)
	assert.Equal(t, 400, stale.Code)
}

func TestRequestValidation(t *testing.T) {
	dec := runServer(t, nil,
		Request{ID: "long", Prefix: "abcdefghijklmnop"},
		Request{ID: "empty", Action: ActionSearch, Topic: "   "},
		Request{ID: "control", Action: ActionSearch, Topic: "climate\x00change"},
		Request{ID: "nothing"},
		Request{ID: "unknown", Action: "dance"},
		Request{ID: "store", Action: ActionRead, Article: "a"},
	)

	want := []struct {
		id   string
		code int
	}{
		{"long", 400},
		{"empty", 400},
		{"control", 400},
		{"nothing", 400},
		{"unknown", 400},
		{"store", 503},
	}
	for _, w := range want {
		var e ErrorResponse
		require.NoError(t, dec.Decode(&e))
		assert.Equal(t, w.id, e.ID)
		assert.Equal(t, w.code, e.Code, w.id)
		assert.NotEmpty(t, e.Error)
	}
}

func TestNumericTopicIsSearchable(t *testing.T) {
	dec := runServer(t, nil, Request{ID: "year", Action: ActionSearch, Topic: "2024"})

	var res SearchResponse
	require.NoError(t, dec.Decode(&res))
	assert.Equal(t, "year", res.ID)
	assert.Equal(t, "2024", res.Topic)
	assert.Equal(t, 2, res.Count)
}

func TestReaderActions(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "reader.db"))
	require.NoError(t, err)
	defer st.Close()

	dec := runServer(t, st,
		Request{ID: "f1", Action: ActionFeedback, Article: "high", Vote: "up"},
		Request{ID: "f2", Action: ActionFeedback, Article: "high", Vote: "up"},
		Request{ID: "f3", Action: ActionFeedback, Article: "high", Vote: "meh"},
		Request{ID: "r1", Action: ActionRead, Article: "high"},
		Request{ID: "r2", Action: ActionRead, Article: "high"},
		Request{ID: "c1", Action: ActionComment, Article: "high", Author: "Ana", Text: "Great read"},
		Request{ID: "c2", Action: ActionComments, Article: "high"},
		Request{ID: "l1", Action: ActionLang, Lang: "ta"},
		Request{ID: "l2", Action: ActionLang, Lang: "klingon"},
		Request{ID: "s1", Action: ActionStats},
	)

	var f1, f2 StatusResponse
	require.NoError(t, dec.Decode(&f1))
	assert.Equal(t, "set", f1.Status)
	assert.Equal(t, "up", f1.Vote)
	require.NoError(t, dec.Decode(&f2))
	assert.Equal(t, "cleared", f2.Status)
	assert.Empty(t, f2.Vote)

	var bad ErrorResponse
	require.NoError(t, dec.Decode(&bad))
	assert.Equal(t, 400, bad.Code)

	var r1, r2 StatusResponse
	require.NoError(t, dec.Decode(&r1))
	assert.True(t, r1.FirstRead)
	require.NoError(t, dec.Decode(&r2))
	assert.False(t, r2.FirstRead)

	var c1, c2 StatusResponse
	require.NoError(t, dec.Decode(&c1))
	require.NotNil(t, c1.Comment)
	assert.Equal(t, "Ana", c1.Comment.Author)
	require.NoError(t, dec.Decode(&c2))
	require.Len(t, c2.Comments, 1)
	assert.Equal(t, c1.Comment.ID, c2.Comments[0].ID)

	var l1 StatusResponse
	require.NoError(t, dec.Decode(&l1))
	assert.Equal(t, "ta", l1.Lang)
	var l2 ErrorResponse
	require.NoError(t, dec.Decode(&l2))
	assert.Equal(t, 400, l2.Code)

	var stats StatsResponse
	require.NoError(t, dec.Decode(&stats))
	assert.Equal(t, 1, stats.Reads)
	assert.Equal(t, "getting_started", stats.Rank)
	assert.Equal(t, "தொடக்கநிலை", stats.RankTitle)
	assert.Equal(t, "ta", stats.Lang)
	assert.Equal(t, 10, stats.Counters["requests"])

	lang, err := st.Language(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ta", lang)
}

func TestInvalidStreamStopsServer(t *testing.T) {
	var out bytes.Buffer
	srv := NewServerWithIO(newTestSession(), nil, Options{}, bytes.NewReader([]byte{0xc1}), &out)
	assert.Error(t, srv.Start(context.Background()))

	dec := msgpack.NewDecoder(&out)
	var ready ReadyResponse
	require.NoError(t, dec.Decode(&ready))
	var e ErrorResponse
	require.NoError(t, dec.Decode(&e))
	assert.Equal(t, 400, e.Code)
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{MaxLimit: 1 << 20}
	o.defaults()
	assert.Equal(t, 65535, o.MaxLimit)
	assert.Equal(t, 60, o.MaxPrefix)
	assert.Equal(t, 120, o.MaxTopic)
}

func TestSearchErrorCodes(t *testing.T) {
	assert.Equal(t, 400, searchErrorCode(session.ErrEmptyTopic))
	assert.Equal(t, 404, searchErrorCode(news.ErrNoArticles))
	assert.Equal(t, 409, searchErrorCode(session.ErrSearchInProgress))
	assert.Equal(t, 502, searchErrorCode(news.ErrAnalyze))
	assert.Equal(t, 504, searchErrorCode(context.DeadlineExceeded))
}
