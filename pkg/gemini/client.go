/*
Package gemini implements the news search, analysis and illustration steps
on top of the Google Gen AI SDK.

Search uses the Google Search grounding tool and reads the grounding chunks of
the first candidate. Analysis asks for a JSON document matching a schema
reflected from Go structs. Illustration calls the image model and returns a
data URL.
*/
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bastiangx/topicserve/pkg/news"
	"github.com/charmbracelet/log"
	"google.golang.org/genai"
)

const (
	DefaultModel      = "gemini-2.5-flash"
	DefaultImageModel = "imagen-4.0-generate-001"
)

// generator is the part of *genai.Models the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Client talks to Gemini. It satisfies news.Searcher, news.Analyzer and
// news.Illustrator.
type Client struct {
	models     generator
	model      string
	imageModel string
	schema     *genai.Schema
}

// Options selects models; empty values fall back to the defaults.
type Options struct {
	APIKey     string
	Model      string
	ImageModel string
}

// New creates a Gemini API client. An empty APIKey lets the SDK read
// GOOGLE_API_KEY / GEMINI_API_KEY from the environment.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" && os.Getenv("GOOGLE_API_KEY") == "" && os.Getenv("GEMINI_API_KEY") == "" {
		return nil, fmt.Errorf("gemini: no API key configured")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newClient(gc.Models, opts)
}

func newClient(models generator, opts Options) (*Client, error) {
	schema, err := GenerateSchema[analysisPayload]()
	if err != nil {
		return nil, fmt.Errorf("gemini: build analysis schema: %w", err)
	}
	c := &Client{
		models:     models,
		model:      opts.Model,
		imageModel: opts.ImageModel,
		schema:     schema,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.imageModel == "" {
		c.imageModel = DefaultImageModel
	}
	return c, nil
}

// FetchNews asks the model to search the web for the topic and returns the
// grounding sources it used.
func (c *Client) FetchNews(ctx context.Context, topic string) ([]news.RawArticle, error) {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(SearchPrompt(topic)), config)
	if err != nil {
		log.Errorf("Error fetching news: %v", err)
		return nil, fmt.Errorf("%w: %w", news.ErrFetch, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return []news.RawArticle{}, nil
	}

	chunks := resp.Candidates[0].GroundingMetadata.GroundingChunks
	articles := make([]news.RawArticle, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		articles = append(articles, news.RawArticle{
			Title: chunk.Web.Title,
			URI:   chunk.Web.URI,
		})
	}
	log.Debugf("Fetched %d raw articles for '%s'", len(articles), topic)
	return articles, nil
}

// RankAndAnalyze summarizes and scores raw articles, extracts keywords and
// builds the topic graph.
func (c *Client) RankAndAnalyze(ctx context.Context, topic string, raw []news.RawArticle) (*news.Analysis, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   c.schema,
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(AnalysisPrompt(topic, raw)), config)
	if err != nil {
		log.Errorf("Error analyzing articles: %v", err)
		return nil, fmt.Errorf("%w: %w", news.ErrAnalyze, err)
	}

	analysis, err := ParseAnalysis(resp.Text(), raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", news.ErrAnalyze, err)
	}
	return analysis, nil
}

// GenerateImage renders an illustration for a headline. Failures are logged
// and reported as an empty URL so the article list keeps working.
func (c *Client) GenerateImage(ctx context.Context, title string) (string, error) {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    "16:9",
	}

	resp, err := c.models.GenerateImages(ctx, c.imageModel, ImagePrompt(title), config)
	if err != nil {
		log.Errorf("Error generating image: %v", err)
		return "", nil
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		log.Warnf("No image was generated for '%s'", title)
		return "", nil
	}
	return DataURL(resp.GeneratedImages[0].Image.ImageBytes), nil
}

// DataURL encodes jpeg bytes for inline display.
func DataURL(jpeg []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)
}

// ParseAnalysis decodes the model's JSON answer and joins it with the raw
// search hits.
func ParseAnalysis(text string, raw []news.RawArticle) (*news.Analysis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty analysis response")
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}

	analysis := &news.Analysis{
		Articles: make([]news.Article, 0, len(payload.Articles)),
		Keywords: payload.Keywords,
		Graph: news.GraphData{
			Nodes: make([]news.GraphNode, 0, len(payload.GraphData.Nodes)),
			Links: make([]news.GraphLink, 0, len(payload.GraphData.Links)),
		},
	}
	if analysis.Keywords == nil {
		analysis.Keywords = []string{}
	}

	for _, a := range payload.Articles {
		analysis.Articles = append(analysis.Articles, news.Article{
			ID:             a.ID,
			Title:          a.Title,
			Summary:        a.Summary,
			RelevanceScore: a.RelevanceScore,
		})
	}
	news.MergeSources(analysis.Articles, raw)

	for _, n := range payload.GraphData.Nodes {
		analysis.Graph.Nodes = append(analysis.Graph.Nodes, news.GraphNode{ID: n.ID, Group: n.Group})
	}
	for _, l := range payload.GraphData.Links {
		analysis.Graph.Links = append(analysis.Graph.Links, news.GraphLink{
			Source: l.Source,
			Target: l.Target,
			Label:  l.Label,
		})
	}
	news.NormalizeLinks(&analysis.Graph)

	return analysis, nil
}
