// Package i18n holds the UI strings for the supported languages.
package i18n

import "strings"

// Key names a UI string. Rank keys match the reader rank identifiers.
type Key string

const (
	Title          Key = "title"
	SearchTopic    Key = "search_topic"
	Search         Key = "search"
	Searching      Key = "searching"
	YourStats      Key = "your_stats"
	DailyStreak    Key = "daily_streak"
	ReaderRank     Key = "reader_rank"
	ArticlesRead   Key = "articles_read"
	RankedArticles Key = "ranked_articles"
	NoArticles     Key = "no_articles"
	FetchingNews   Key = "fetching_news"
	Suggestions    Key = "suggestions"
	NoSuggestions  Key = "no_suggestions"
	Relevance      Key = "relevance"
	Source         Key = "source"
	Comments       Key = "comments"
	AddComment     Key = "add_comment"
	Keywords       Key = "keywords"

	WeakWarrior     Key = "weak_warrior"
	GettingStarted  Key = "getting_started"
	InformedCitizen Key = "informed_citizen"
	NewsHound       Key = "news_hound"
	TopReader       Key = "top_reader"
)

const (
	English   = "en"
	Tamil     = "ta"
	Malayalam = "ml"
)

var translations = map[string]map[Key]string{
	English: {
		Title:           "AI News Discovery",
		SearchTopic:     "Search for a topic",
		Search:          "Search",
		Searching:       "Searching...",
		YourStats:       "Your Stats",
		DailyStreak:     "Daily Streak",
		ReaderRank:      "Reader Rank",
		ArticlesRead:    "Articles Read",
		RankedArticles:  "Ranked Articles",
		NoArticles:      "No articles found.",
		FetchingNews:    "Fetching news...",
		Suggestions:     "Suggestions",
		NoSuggestions:   "No suggestions",
		Relevance:       "Relevance",
		Source:          "Source",
		Comments:        "Comments",
		AddComment:      "Add Comment",
		Keywords:        "Keywords",
		WeakWarrior:     "Weak Warrior",
		GettingStarted:  "Getting Started",
		InformedCitizen: "Informed Citizen",
		NewsHound:       "News Hound",
		TopReader:       "Top Reader",
	},
	Tamil: {
		Title:           "AI செய்தி கண்டுபிடிப்பு",
		SearchTopic:     "ஒரு தலைப்பைத் தேடுங்கள்",
		Search:          "தேடு",
		Searching:       "தேடுகிறது...",
		YourStats:       "உங்கள் புள்ளிவிவரங்கள்",
		DailyStreak:     "தினசரி தொடர்",
		ReaderRank:      "வாசகர் தரம்",
		ArticlesRead:    "படித்த கட்டுரைகள்",
		RankedArticles:  "தரவரிசைப்படுத்தப்பட்ட கட்டுரைகள்",
		NoArticles:      "கட்டுரைகள் எதுவும் கிடைக்கவில்லை.",
		FetchingNews:    "செய்திகளைப் பெறுகிறது...",
		Suggestions:     "பரிந்துரைகள்",
		NoSuggestions:   "பரிந்துரைகள் இல்லை",
		Relevance:       "பொருத்தம்",
		Source:          "மூலம்",
		Comments:        "கருத்துகள்",
		AddComment:      "கருத்தைச் சேர்",
		Keywords:        "முக்கிய சொற்கள்",
		WeakWarrior:     "பலவீனமான வீரர்",
		GettingStarted:  "தொடக்கநிலை",
		InformedCitizen: "தகவலறிந்த குடிமகன்",
		NewsHound:       "செய்தி வேட்டைக்காரர்",
		TopReader:       "சிறந்த வாசகர்",
	},
	Malayalam: {
		Title:           "AI വാർത്താ കണ്ടെത്തൽ",
		SearchTopic:     "ഒരു വിഷയം തിരയുക",
		Search:          "തിരയുക",
		Searching:       "തിരയുന്നു...",
		YourStats:       "നിങ്ങളുടെ സ്ഥിതിവിവരക്കണക്കുകൾ",
		DailyStreak:     "പ്രതിദിന സ്ട്രീക്ക്",
		ReaderRank:      "വായനക്കാരന്റെ റാങ്ക്",
		ArticlesRead:    "വായിച്ച ലേഖനങ്ങൾ",
		RankedArticles:  "റാങ്ക് ചെയ്ത ലേഖനങ്ങൾ",
		FetchingNews:    "വാർത്തകൾ ലഭ്യമാക്കുന്നു...",
		NoArticles:      "ലേഖനങ്ങളൊന്നും കണ്ടെത്തിയില്ല.",
		Suggestions:     "നിർദ്ദേശങ്ങൾ",
		NoSuggestions:   "നിർദ്ദേശങ്ങളൊന്നുമില്ല",
		Relevance:       "പ്രസക്തി",
		Source:          "ഉറവിടം",
		Comments:        "അഭിപ്രായങ്ങൾ",
		AddComment:      "അഭിപ്രായം ചേർക്കുക",
		Keywords:        "പ്രധാന വാക്കുകൾ",
		WeakWarrior:     "ദുർബല യോദ്ധാവ്",
		GettingStarted:  "തുടക്കക്കാരൻ",
		InformedCitizen: "അറിവുള്ള പൗരൻ",
		NewsHound:       "വാർത്താ വേട്ടക്കാരൻ",
		TopReader:       "മികച്ച വായനക്കാരൻ",
	},
}

// Languages lists the supported language codes.
func Languages() []string {
	return []string{English, Tamil, Malayalam}
}

// Supported reports whether lang has a translation table.
func Supported(lang string) bool {
	_, ok := translations[Normalize(lang)]
	return ok
}

// Normalize lowercases a language code and drops any region, so "ta-IN"
// becomes "ta".
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	return lang
}

// T translates key. Unknown languages use English, and a key missing from a
// table falls back to the English string and then to the key itself.
func T(lang string, key Key) string {
	if table, ok := translations[Normalize(lang)]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	if s, ok := translations[English][key]; ok {
		return s
	}
	return string(key)
}

// Translator binds T to one language.
type Translator struct {
	lang string
}

// New returns a Translator for lang, English when unsupported.
func New(lang string) Translator {
	lang = Normalize(lang)
	if _, ok := translations[lang]; !ok {
		lang = English
	}
	return Translator{lang: lang}
}

func (t Translator) Lang() string {
	return t.lang
}

func (t Translator) T(key Key) string {
	return T(t.lang, key)
}
