package scraper

import (
	"context"
	"strconv"
	"strings"

	"github.com/lojascan/storescan/internal/models"
	"github.com/lojascan/storescan/internal/search"
)

// ScrapeAndOptimize scrapes the URLs and, when a query is given, returns
// only the items ranked relevant to it, deduplicated and capped at
// maxResults. Without a query the scraped items are returned as-is,
// truncated to maxResults.
func (s *Scraper) ScrapeAndOptimize(ctx context.Context, urls []string, query string, maxResults int) []models.ScrapedItem {
	if maxResults < 1 {
		maxResults = search.DefaultMaxResults
	}

	items := s.ScrapeURLs(ctx, urls)

	if strings.TrimSpace(query) == "" {
		if len(items) > maxResults {
			items = items[:maxResults]
		}
		return items
	}

	results := search.Optimize(query, items, maxResults, true)
	optimized := make([]models.ScrapedItem, 0, len(results))
	for _, result := range results {
		item := models.ScrapedItem{
			URL:      result.URL,
			Title:    result.Title,
			Price:    result.Price,
			Currency: result.Currency,
		}
		if result.Price != nil {
			item.RawPrice = strings.TrimSpace(result.Currency + " " + strconv.FormatFloat(*result.Price, 'f', -1, 64))
		}
		optimized = append(optimized, item)
	}
	s.logger.Info("optimized results", "query", query, "input", len(items), "output", len(optimized))
	return optimized
}
