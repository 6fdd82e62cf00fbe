package gemini

import (
	"fmt"
	"strings"

	"github.com/bastiangx/topicserve/pkg/news"
)

// SearchPrompt asks for the most important recent articles about topic.
func SearchPrompt(topic string) string {
	return fmt.Sprintf("Find the top 5-7 most important and recent news articles about %q.", topic)
}

// AnalysisPrompt asks for summaries, scores, keywords and a topic graph.
func AnalysisPrompt(topic string, raw []news.RawArticle) string {
	var articles strings.Builder
	for i, a := range raw {
		if i > 0 {
			articles.WriteByte('\n')
		}
		fmt.Fprintf(&articles, "Article %d: %q", i+1, a.Title)
	}

	return fmt.Sprintf(`Analyze the following news articles related to the topic %[1]q.

Articles:
%[2]s

Based on all articles provided, perform these tasks:
1. For each article, write a 2-3 sentence summary and assign a relevance score (1-100) based on its importance and directness to the topic. Create a unique slug-like ID for each from its title.
2. Extract a combined list of the 10-15 most significant keywords from all articles.
3. Create a knowledge graph. The main topic %[1]q should be the central node. Identify key people, organizations, and concepts from the articles as other nodes. Create links that describe their relationships. Keep the graph to about 5-8 nodes and 5-10 links for clarity.

Return the result in the specified JSON format.`, topic, articles.String())
}

// ImagePrompt describes the illustration for a headline.
func ImagePrompt(title string) string {
	return fmt.Sprintf("A visually appealing and abstract, journalistic-style image representing the news article titled: %q", title)
}
