/*
Package news holds the article and topic-graph types exchanged with the AI
search service, and the interfaces that service must satisfy.

A search runs in two steps: a Searcher finds raw articles for a topic, then an
Analyzer summarizes and scores them, extracts keywords and builds a small
entity graph. An Illustrator may then produce one image per article.
*/
package news

import (
	"context"
	"errors"
)

var (
	// ErrNoArticles is returned when the search step found nothing.
	ErrNoArticles = errors.New("no articles found for this topic")
	// ErrFetch wraps failures of the search step.
	ErrFetch = errors.New("failed to fetch news")
	// ErrAnalyze wraps failures of the analysis step.
	ErrAnalyze = errors.New("failed to analyze articles")
)

// RawArticle is a search hit before analysis.
type RawArticle struct {
	Title string `json:"title" msgpack:"title"`
	URI   string `json:"uri" msgpack:"uri"`
}

// Article is an analyzed, scored article.
type Article struct {
	ID             string `json:"id" msgpack:"id"`
	Title          string `json:"title" msgpack:"title"`
	Summary        string `json:"summary" msgpack:"summary"`
	URL            string `json:"url" msgpack:"url"`
	Source         string `json:"source" msgpack:"source"`
	RelevanceScore int    `json:"relevanceScore" msgpack:"score"`
	ImageURL       string `json:"imageUrl,omitempty" msgpack:"image,omitempty"`
}

// GraphNode is an entity in the topic graph; Group is e.g. topic, person,
// organization or concept.
type GraphNode struct {
	ID    string `json:"id" msgpack:"id"`
	Group string `json:"group" msgpack:"group"`
}

// GraphLink relates two nodes by ID.
type GraphLink struct {
	Source string `json:"source" msgpack:"source"`
	Target string `json:"target" msgpack:"target"`
	Label  string `json:"label" msgpack:"label"`
	Value  int    `json:"value" msgpack:"value"`
}

type GraphData struct {
	Nodes []GraphNode `json:"nodes" msgpack:"nodes"`
	Links []GraphLink `json:"links" msgpack:"links"`
}

// Analysis is everything the analysis step returns for one topic.
type Analysis struct {
	Articles []Article `json:"articles" msgpack:"articles"`
	Keywords []string  `json:"keywords" msgpack:"keywords"`
	Graph    GraphData `json:"graphData" msgpack:"graph"`
}

// Searcher finds recent articles about a topic.
type Searcher interface {
	FetchNews(ctx context.Context, topic string) ([]RawArticle, error)
}

// Analyzer summarizes, scores and relates raw articles.
type Analyzer interface {
	RankAndAnalyze(ctx context.Context, topic string, raw []RawArticle) (*Analysis, error)
}

// Illustrator produces an image URL for an article title. An empty URL with
// a nil error means no image was produced.
type Illustrator interface {
	GenerateImage(ctx context.Context, title string) (string, error)
}
