/*
Package session drives one reader's search session: it runs the news search
and analysis for a topic, refills the keyword index from the analysis, and
serves dropdown suggestions from it.

The keyword index is cleared before the external request, so suggestions
requested while a search is in flight come back empty. It is refilled only
when the search succeeds.
*/
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bastiangx/topicserve/pkg/news"
	"github.com/bastiangx/topicserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultImageWorkers = 3
	DefaultTimeout      = 90 * time.Second
)

var (
	ErrEmptyTopic       = errors.New("topic is empty")
	ErrSearchInProgress = errors.New("a search is already in progress")
)

// TopicRecorder persists searched topics.
type TopicRecorder interface {
	RecordTopic(ctx context.Context, topic string) (int, error)
}

// Result is what a successful search produced.
type Result struct {
	Topic    string
	Articles []news.Article
	Keywords []string
	Graph    news.GraphData
	Elapsed  time.Duration
}

// Controller coordinates the completer with the AI collaborators.
type Controller struct {
	id          string
	completer   *suggest.Completer
	searcher    news.Searcher
	analyzer    news.Analyzer
	illustrator news.Illustrator
	recorder    TopicRecorder
	limiter     *rate.Limiter
	limit       int
	workers     int
	timeout     time.Duration

	searching atomic.Bool
	searches  atomic.Int64

	mu   sync.RWMutex
	last *Result
}

// Option configures a Controller.
type Option func(*Controller)

// WithIllustrator enables per-article images.
func WithIllustrator(i news.Illustrator) Option {
	return func(c *Controller) { c.illustrator = i }
}

// WithRecorder stores every successfully searched topic.
func WithRecorder(r TopicRecorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithLimit sets the dropdown size; values <= 0 keep suggest.DefaultLimit.
func WithLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithRateLimit allows at most perMinute searches per minute. Zero disables
// the limit.
func WithRateLimit(perMinute int) Option {
	return func(c *Controller) {
		if perMinute <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
}

// WithImageWorkers bounds concurrent image requests.
func WithImageWorkers(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithTimeout bounds a whole search including images. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// New builds a Controller with a fresh session ID.
func New(completer *suggest.Completer, searcher news.Searcher, analyzer news.Analyzer, opts ...Option) *Controller {
	c := &Controller{
		id:        uuid.NewString(),
		completer: completer,
		searcher:  searcher,
		analyzer:  analyzer,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		limit:     suggest.DefaultLimit,
		workers:   DefaultImageWorkers,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) Completer() *suggest.Completer {
	return c.completer
}

// Searching reports whether a search is in flight.
func (c *Controller) Searching() bool {
	return c.searching.Load()
}

// Last returns the most recent successful result, nil if none.
func (c *Controller) Last() *Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Suggest returns dropdown suggestions for the typed text.
func (c *Controller) Suggest(input string) []suggest.Suggestion {
	return c.completer.Complete(input, c.limit)
}

// SuggestN is Suggest with an explicit limit.
func (c *Controller) SuggestN(input string, limit int) []suggest.Suggestion {
	return c.completer.Complete(input, limit)
}

// Search runs the fetch, analyze and illustrate steps for topic.
func (c *Controller) Search(ctx context.Context, topic string) (*Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	if !c.searching.CompareAndSwap(false, true) {
		return nil, ErrSearchInProgress
	}
	defer c.searching.Store(false)

	start := time.Now()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("search %q: %w", topic, err)
	}

	c.completer.Reset()
	c.mu.Lock()
	c.last = nil
	c.mu.Unlock()

	raw, err := c.searcher.FetchNews(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", topic, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("search %q: %w", topic, news.ErrNoArticles)
	}

	analysis, err := c.analyzer.RankAndAnalyze(ctx, topic, raw)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", topic, err)
	}

	news.SortByRelevance(analysis.Articles)
	stored := c.completer.AddKeywords(analysis.Keywords)
	c.record(ctx, topic)

	c.illustrate(ctx, analysis.Articles)

	res := &Result{
		Topic:    topic,
		Articles: analysis.Articles,
		Keywords: analysis.Keywords,
		Graph:    analysis.Graph,
		Elapsed:  time.Since(start),
	}
	c.mu.Lock()
	c.last = res
	c.mu.Unlock()
	c.searches.Add(1)

	log.Debugf("Search '%s' done: %d articles, %d keywords in %v", topic, len(res.Articles), stored, res.Elapsed)
	return res, nil
}

func (c *Controller) record(ctx context.Context, topic string) {
	if h := c.completer.History(); h != nil {
		h.Record(topic)
	}
	if c.recorder == nil {
		return
	}
	if _, err := c.recorder.RecordTopic(ctx, topic); err != nil {
		log.Warnf("Failed to record topic '%s': %v", topic, err)
	}
}

// illustrate fills ImageURL for each article. Failures only leave the URL
// empty.
func (c *Controller) illustrate(ctx context.Context, articles []news.Article) {
	if c.illustrator == nil || len(articles) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(c.workers)

	for i := range articles {
		g.Go(func() error {
			url, err := c.illustrator.GenerateImage(ctx, articles[i].Title)
			if err != nil {
				log.Warnf("Failed to generate image for article: '%s': %v", articles[i].Title, err)
				return nil
			}
			articles[i].ImageURL = url
			return nil
		})
	}
	_ = g.Wait()
}

// Stats merges the completer's counters with the session's own.
func (c *Controller) Stats() map[string]int {
	stats := c.completer.Stats()
	stats["searches"] = int(c.searches.Load())
	stats["limit"] = c.limit
	return stats
}
