package models

// ScrapedItem is the outcome of fetching one URL and extracting product data
// from it. A failed fetch still produces an item with only URL set; absent
// title/price means extraction found nothing, not that the fetch failed.
type ScrapedItem struct {
	URL      string   `json:"url"`
	Title    string   `json:"title,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Currency string   `json:"currency,omitempty"`
	RawPrice string   `json:"raw_price,omitempty"`
}

// SearchResult is a scraped candidate scored against a search query.
// RelevanceScore is in [0, 100] and stays 0 until computed.
type SearchResult struct {
	URL            string   `json:"url"`
	Title          string   `json:"title,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	Currency       string   `json:"currency,omitempty"`
	RelevanceScore float64  `json:"relevance_score"`
}
