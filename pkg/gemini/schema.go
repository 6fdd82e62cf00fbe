package gemini

import (
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"
)

// analyzedArticle, analysisGraph and analysisPayload describe the JSON the
// model must return. They are reflected into a response schema once.
type analyzedArticle struct {
	ID             string `json:"id" jsonschema_description:"A unique slug-like ID derived from the article title."`
	Title          string `json:"title"`
	Summary        string `json:"summary" jsonschema_description:"A concise 2-3 sentence summary of the article."`
	RelevanceScore int    `json:"relevanceScore" jsonschema_description:"A score from 1-100 indicating relevance to the main topic."`
}

type analysisNode struct {
	ID    string `json:"id" jsonschema_description:"The name of the entity."`
	Group string `json:"group" jsonschema_description:"e.g. 'topic', 'person', 'organization', 'concept'"`
}

type analysisLink struct {
	Source string `json:"source" jsonschema_description:"The ID of the source node."`
	Target string `json:"target" jsonschema_description:"The ID of the target node."`
	Label  string `json:"label" jsonschema_description:"A brief description of the relationship (e.g. 'collaborated with', 'funded')."`
}

type analysisGraph struct {
	Nodes []analysisNode `json:"nodes" jsonschema_description:"Nodes representing the main topic, people, organizations, and concepts."`
	Links []analysisLink `json:"links" jsonschema_description:"Links showing relationships between nodes."`
}

type analysisPayload struct {
	Articles  []analyzedArticle `json:"articles" jsonschema_description:"List of articles, each with a title, summary, relevance score, and a unique ID based on its title."`
	Keywords  []string          `json:"keywords" jsonschema_description:"A list of 10-15 important and relevant keywords from all articles."`
	GraphData analysisGraph     `json:"graphData" jsonschema_description:"Data for a topic relationship graph."`
}

// GenerateSchema reflects T into a Gemini response schema.
func GenerateSchema[T any]() (*genai.Schema, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var v T
	return ConvertToGeminiSchema(reflector.Reflect(v))
}

// ConvertToGeminiSchema maps a JSON schema onto the subset Gemini accepts.
func ConvertToGeminiSchema(s *jsonschema.Schema) (*genai.Schema, error) {
	if s == nil {
		return nil, fmt.Errorf("nil schema")
	}

	out := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
	}

	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "string":
		out.Type = genai.TypeString
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("unsupported schema type %q", s.Type)
	}

	for _, e := range s.Enum {
		out.Enum = append(out.Enum, fmt.Sprint(e))
	}

	if s.Items != nil {
		items, err := ConvertToGeminiSchema(s.Items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		out.Items = items
	}

	if s.Properties != nil && s.Properties.Len() > 0 {
		out.Properties = make(map[string]*genai.Schema, s.Properties.Len())
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			prop, err := ConvertToGeminiSchema(pair.Value)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", pair.Key, err)
			}
			out.Properties[pair.Key] = prop
			out.PropertyOrdering = append(out.PropertyOrdering, pair.Key)
		}
	}

	if out.Type == genai.TypeObject && len(out.Properties) == 0 {
		return nil, fmt.Errorf("object schema %q has no properties", strings.TrimSpace(s.Title))
	}
	return out, nil
}
