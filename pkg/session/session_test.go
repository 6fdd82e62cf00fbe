package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bastiangx/topicserve/pkg/news"
	"github.com/bastiangx/topicserve/pkg/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	raw   []news.RawArticle
	err   error
	hook  func()
	calls atomic.Int32
}

func (f *fakeSearcher) FetchNews(_ context.Context, _ string) ([]news.RawArticle, error) {
	f.calls.Add(1)
	if f.hook != nil {
		f.hook()
	}
	return f.raw, f.err
}

type fakeAnalyzer struct {
	analysis *news.Analysis
	err      error
}

func (f *fakeAnalyzer) RankAndAnalyze(_ context.Context, _ string, _ []news.RawArticle) (*news.Analysis, error) {
	if f.err != nil {
		return nil, f.err
	}
	a := *f.analysis
	a.Articles = append([]news.Article(nil), f.analysis.Articles...)
	return &a, nil
}

type fakeIllustrator struct {
	mu   sync.Mutex
	seen []string
}

func (f *fakeIllustrator) GenerateImage(_ context.Context, title string) (string, error) {
	f.mu.Lock()
	f.seen = append(f.seen, title)
	f.mu.Unlock()
	if title == "broken" {
		return "", errors.New("safety filter")
	}
	return "img:" + title, nil
}

type fakeRecorder struct {
	topics []string
}

func (f *fakeRecorder) RecordTopic(_ context.Context, topic string) (int, error) {
	f.topics = append(f.topics, topic)
	return len(f.topics), nil
}

func sampleAnalysis() *news.Analysis {
	return &news.Analysis{
		Articles: []news.Article{
			{ID: "low", Title: "broken", RelevanceScore: 40},
			{ID: "high", Title: "Big story", RelevanceScore: 95},
			{ID: "mid", Title: "Side story", RelevanceScore: 70},
		},
		Keywords: []string{"Climate", "Climate Policy", "Carbon", "Emissions"},
	}
}

func sampleRaw() []news.RawArticle {
	return []news.RawArticle{{Title: "Big story", URI: "https://example.com/a"}}
}

func words(s []suggest.Suggestion) []string {
	out := make([]string, len(s))
	for i, x := range s {
		out[i] = x.Word
	}
	return out
}

func TestSearchPopulatesKeywords(t *testing.T) {
	rec := &fakeRecorder{}
	ill := &fakeIllustrator{}
	c := New(suggest.NewCompleter(),
		&fakeSearcher{raw: sampleRaw()},
		&fakeAnalyzer{analysis: sampleAnalysis()},
		WithIllustrator(ill), WithRecorder(rec), WithImageWorkers(2))

	res, err := c.Search(context.Background(), "  Climate  ")
	require.NoError(t, err)

	assert.Equal(t, "Climate", res.Topic)
	require.Len(t, res.Articles, 3)
	assert.Equal(t, []string{"high", "mid", "low"}, []string{res.Articles[0].ID, res.Articles[1].ID, res.Articles[2].ID})
	assert.Equal(t, "img:Big story", res.Articles[0].ImageURL)
	assert.Empty(t, res.Articles[2].ImageURL)
	assert.Len(t, ill.seen, 3)

	assert.Equal(t, []string{"climate", "climate policy", "carbon"}, words(c.Suggest("c")))
	assert.Equal(t, []string{"Climate"}, rec.topics)
	assert.Same(t, res, c.Last())
	assert.Equal(t, 1, c.Stats()["searches"])
	assert.False(t, c.Searching())
}

func TestSearchRejectsEmptyTopic(t *testing.T) {
	s := &fakeSearcher{raw: sampleRaw()}
	c := New(suggest.NewCompleter(), s, &fakeAnalyzer{analysis: sampleAnalysis()})

	_, err := c.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyTopic)
	assert.Zero(t, s.calls.Load())
}

func TestIndexEmptyDuringSearch(t *testing.T) {
	comp := suggest.NewCompleter()
	comp.AddKeywords([]string{"old keyword"})

	var during []suggest.Suggestion
	var c *Controller
	s := &fakeSearcher{raw: sampleRaw()}
	s.hook = func() { during = c.Suggest("o") }
	c = New(comp, s, &fakeAnalyzer{analysis: sampleAnalysis()})

	_, err := c.Search(context.Background(), "Climate")
	require.NoError(t, err)
	assert.Empty(t, during)
	assert.Empty(t, c.Suggest("o"))
}

func TestFailedSearchLeavesIndexEmpty(t *testing.T) {
	tests := []struct {
		name     string
		searcher *fakeSearcher
		analyzer *fakeAnalyzer
		want     error
	}{
		{"no articles", &fakeSearcher{}, &fakeAnalyzer{analysis: sampleAnalysis()}, news.ErrNoArticles},
		{"fetch error", &fakeSearcher{err: news.ErrFetch}, &fakeAnalyzer{analysis: sampleAnalysis()}, news.ErrFetch},
		{"analyze error", &fakeSearcher{raw: sampleRaw()}, &fakeAnalyzer{err: news.ErrAnalyze}, news.ErrAnalyze},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			comp := suggest.NewCompleter()
			comp.AddKeywords([]string{"carbon"})
			c := New(comp, tt.searcher, tt.analyzer, WithRecorder(rec))

			res, err := c.Search(context.Background(), "Climate")
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, c.Suggest("c"))
			assert.Empty(t, rec.topics)
			assert.Nil(t, c.Last())
		})
	}
}

func TestSearchInProgress(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	s := &fakeSearcher{raw: sampleRaw()}
	s.hook = func() {
		close(entered)
		<-release
	}
	c := New(suggest.NewCompleter(), s, &fakeAnalyzer{analysis: sampleAnalysis()})

	done := make(chan error, 1)
	go func() {
		_, err := c.Search(context.Background(), "first")
		done <- err
	}()
	<-entered

	assert.True(t, c.Searching())
	_, err := c.Search(context.Background(), "second")
	assert.ErrorIs(t, err, ErrSearchInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.EqualValues(t, 1, s.calls.Load())
}

func TestSearchRecordsHistory(t *testing.T) {
	h := suggest.NewTopicHistory(10)
	c := New(suggest.NewCompleter(suggest.WithHistory(h)),
		&fakeSearcher{raw: sampleRaw()},
		&fakeAnalyzer{analysis: &news.Analysis{Articles: []news.Article{{ID: "a"}}, Keywords: []string{}}})

	_, err := c.Search(context.Background(), "Quantum computing")
	require.NoError(t, err)

	got := c.Suggest("quan")
	require.Len(t, got, 1)
	assert.Equal(t, "quantum computing", got[0].Word)
	assert.Equal(t, suggest.SourceHistory, got[0].Source)
}

func TestHistoryHiddenWhileSearching(t *testing.T) {
	h := suggest.NewTopicHistory(10)
	var during []suggest.Suggestion
	var c *Controller
	s := &fakeSearcher{raw: sampleRaw()}
	c = New(suggest.NewCompleter(suggest.WithHistory(h)), s, &fakeAnalyzer{analysis: sampleAnalysis()})

	_, err := c.Search(context.Background(), "Climate")
	require.NoError(t, err)

	s.hook = func() { during = c.Suggest("c") }
	_, err = c.Search(context.Background(), "Carbon markets")
	require.NoError(t, err)
	assert.Empty(t, during)

	got := c.Suggest("carbon m")
	require.Len(t, got, 1)
	assert.Equal(t, "carbon markets", got[0].Word)
	assert.Equal(t, suggest.SourceHistory, got[0].Source)
}

func TestFailedSearchHidesHistory(t *testing.T) {
	h := suggest.NewTopicHistory(10)
	h.Record("Climate")
	c := New(suggest.NewCompleter(suggest.WithHistory(h)),
		&fakeSearcher{err: news.ErrFetch}, &fakeAnalyzer{analysis: sampleAnalysis()})

	require.NotEmpty(t, c.Suggest("c"))
	_, err := c.Search(context.Background(), "Carbon")
	assert.ErrorIs(t, err, news.ErrFetch)
	assert.Empty(t, c.Suggest("c"))
}

func TestSearchHonoursCancelledContext(t *testing.T) {
	c := New(suggest.NewCompleter(), &fakeSearcher{raw: sampleRaw()},
		&fakeAnalyzer{analysis: sampleAnalysis()}, WithRateLimit(1))

	_, err := c.Search(context.Background(), "one")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Search(ctx, "two")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionIDsDiffer(t *testing.T) {
	a := New(suggest.NewCompleter(), &fakeSearcher{}, &fakeAnalyzer{})
	b := New(suggest.NewCompleter(), &fakeSearcher{}, &fakeAnalyzer{})
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Len(t, a.ID(), 36)
}
