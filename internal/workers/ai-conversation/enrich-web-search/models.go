// internal/workers/ai-conversation/enrich-web-search/models.go
package enrichwebsearch

type Input struct {
	Query   string `json:"query"`
	Context string `json:"context"`
}

type Output struct {
	WebData WebData `json:"webData"`
	Text    string  `json:"text"`
}

type WebData struct {
	Sources []Source `json:"sources"`
	Summary string   `json:"summary"`
}

type Source struct {
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Snippet   string  `json:"snippet"`
	Relevance float64 `json:"relevance"`
}

// searchItem is one entry of the Custom Search JSON API "items" array.
type searchItem struct {
	Link        string `json:"link"`
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	HTMLSnippet string `json:"htmlSnippet"`
	Mime        string `json:"mime"`
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}
