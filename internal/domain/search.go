package domain

// SearchResult is one ranked page: the aggregated similarity score of every
// embedding point that carries the page's URL.
type SearchResult struct {
	URL   string  `json:"url"`
	Score float32 `json:"score"`
}
