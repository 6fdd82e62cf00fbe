package news

import (
	"net/url"
	"sort"
	"strings"
	"unicode"
)

const (
	unknownSource = "Unknown"
	missingURL    = "#"
)

// SortByRelevance orders articles by relevance score, highest first. Ties
// keep the analyzer's order.
func SortByRelevance(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].RelevanceScore > articles[j].RelevanceScore
	})
}

// MergeSources fills URL and Source of analyzed articles from the raw search
// hits. An article is matched to the first raw hit whose title contains, or
// is contained in, its own title (case-insensitive).
func MergeSources(analyzed []Article, raw []RawArticle) {
	for i := range analyzed {
		a := &analyzed[i]
		title := strings.ToLower(a.Title)

		a.URL = missingURL
		a.Source = unknownSource
		for _, r := range raw {
			rt := strings.ToLower(r.Title)
			if !strings.Contains(title, rt) && !strings.Contains(rt, title) {
				continue
			}
			a.URL = r.URI
			a.Source = Hostname(r.URI)
			break
		}
		if a.ID == "" {
			a.ID = Slugify(a.Title)
		}
	}
}

// Hostname returns the host part of uri without port, or "Unknown".
func Hostname(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Hostname() == "" {
		return unknownSource
	}
	return u.Hostname()
}

// Slugify derives a lowercase, dash separated ID from a title.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// NormalizeLinks gives every link a value of 1 when the analyzer left it unset.
func NormalizeLinks(g *GraphData) {
	for i := range g.Links {
		if g.Links[i].Value == 0 {
			g.Links[i].Value = 1
		}
	}
}
