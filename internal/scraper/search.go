package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lojascan/storescan/internal/urlutil"
)

const defaultProductPath = "/produto/"

// paginationMarkers are the query-parameter names storefronts use to page
// through search results.
var paginationMarkers = []string{"page=", "pagina=", "page_number=", "pageNumber="}

// SearchConfig controls product-URL discovery from a search results page.
type SearchConfig struct {
	SearchURL       string
	MaxPages        int
	MaxURLs         int
	IncludePatterns []string
	ExcludePatterns []string
	ProductPath     string
}

// DefaultSearchConfig returns the standard setup for a search crawl: up to 5
// result pages, 500 URLs, product links matched by the /produto/ path.
func DefaultSearchConfig(searchURL string) SearchConfig {
	return SearchConfig{
		SearchURL:   searchURL,
		MaxPages:    5,
		MaxURLs:     500,
		ProductPath: defaultProductPath,
	}
}

// DiscoverSearchURLs walks a search result listing and its pagination,
// collecting product URLs from anchors, raw markup and embedded framework
// state. The crawl stops at MaxPages visited pages or MaxURLs collected
// URLs; fetch failures skip the page.
func (s *Scraper) DiscoverSearchURLs(ctx context.Context, cfg SearchConfig) ([]string, error) {
	if cfg.MaxPages < 1 {
		cfg.MaxPages = 5
	}
	if cfg.MaxURLs < 1 {
		cfg.MaxURLs = 500
	}
	marker := cfg.ProductPath
	if marker == "" {
		marker = defaultProductPath
	}

	include := cfg.IncludePatterns
	if len(include) == 0 {
		include = []string{regexp.QuoteMeta(marker)}
	}
	filter, err := newURLFilter(include, cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("search config: %w", err)
	}

	logger := s.logger.With("search_url", cfg.SearchURL)
	fetcher := s.newFetcher()
	defer fetcher.Close()
	limiter := s.newLimiter()

	absProductRE := regexp.MustCompile(`https?://[^\s"'>]+` + regexp.QuoteMeta(marker) + `[^\s"'>]+`)
	relProductRE := regexp.MustCompile(regexp.QuoteMeta(marker) + `[^\s"'>]+`)

	discovered := newOrderedSet()
	visited := make(map[string]struct{})
	var queue fifo[string]
	queue.push(cfg.SearchURL)

	for !queue.empty() && len(visited) < cfg.MaxPages && discovered.len() < cfg.MaxURLs {
		pageURL := queue.pop()
		if _, ok := visited[pageURL]; ok {
			continue
		}
		visited[pageURL] = struct{}{}

		s.wait(ctx, limiter)
		html := fetcher.FetchText(ctx, pageURL)
		if html == "" {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			continue
		}

		for _, productURL := range extractProductURLs(doc, html, pageURL, marker, absProductRE, relProductRE) {
			if !filter.allowed(productURL) {
				continue
			}
			if discovered.len() >= cfg.MaxURLs {
				break
			}
			discovered.add(productURL)
		}
		if len(visited) >= cfg.MaxPages {
			break
		}

		for _, next := range extractPaginationURLs(doc, pageURL) {
			if _, seen := visited[next]; !seen {
				queue.push(next)
			}
		}
	}

	logger.Info("search discovery finished", "pages", len(visited), "urls", discovered.len())
	return discovered.items, nil
}

// extractProductURLs collects product links from a result page through three
// channels: anchor hrefs, product URLs appearing anywhere in the raw markup,
// and the page's embedded framework state.
func extractProductURLs(doc *goquery.Document, html, pageURL, marker string, absRE, relRE *regexp.Regexp) []string {
	urls := newOrderedSet()

	for _, link := range urlutil.ExtractLinks(html, pageURL, nil, nil) {
		if strings.Contains(link, marker) {
			urls.add(link)
		}
	}

	for _, match := range absRE.FindAllString(html, -1) {
		if normalized, ok := urlutil.Normalize(match); ok {
			urls.add(normalized)
		}
	}
	for _, match := range relRE.FindAllString(html, -1) {
		if resolved, ok := urlutil.Resolve(pageURL, match); ok {
			if normalized, ok := urlutil.Normalize(resolved); ok {
				urls.add(normalized)
			}
		}
	}

	for _, found := range extractProductURLsFromNextData(doc, pageURL, marker) {
		urls.add(found)
	}
	return urls.items
}

// extractProductURLsFromNextData mines the __NEXT_DATA__ payload for product
// references: plain URL strings, externalUrl fields, and product objects
// carrying a numeric code plus a friendlyName slug.
func extractProductURLsFromNextData(doc *goquery.Document, pageURL, marker string) []string {
	text := doc.Find("script#__NEXT_DATA__").First().Text()
	if text == "" {
		return nil
	}
	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil
	}

	urls := newOrderedSet()
	add := func(candidate string) {
		if strings.HasPrefix(candidate, "/") {
			resolved, ok := urlutil.Resolve(pageURL, candidate)
			if !ok {
				return
			}
			candidate = resolved
		}
		if normalized, ok := urlutil.Normalize(candidate); ok {
			urls.add(normalized)
		}
	}

	walkJSONValues(payload, func(value any) {
		switch v := value.(type) {
		case string:
			if strings.Contains(v, marker) {
				add(v)
			}
		case map[string]any:
			if external, ok := v["externalUrl"].(string); ok && strings.Contains(external, marker) {
				add(external)
			}
			number, hasCode := v["code"].(json.Number)
			friendly, hasName := v["friendlyName"].(string)
			if hasCode && hasName && friendly != "" {
				if code, err := number.Int64(); err == nil {
					add(fmt.Sprintf("%s/%d/%s", strings.TrimSuffix(marker, "/"), code, friendly))
				}
			}
		}
	})
	return urls.items
}

// walkJSONValues visits every value in a decoded JSON tree, containers
// included, depth first.
func walkJSONValues(value any, visit func(value any)) {
	visit(value)
	switch tree := value.(type) {
	case map[string]any:
		for _, child := range tree {
			walkJSONValues(child, visit)
		}
	case []any:
		for _, item := range tree {
			walkJSONValues(item, visit)
		}
	}
}

// extractPaginationURLs collects links that look like further result pages.
func extractPaginationURLs(doc *goquery.Document, pageURL string) []string {
	pages := newOrderedSet()
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" {
			return
		}
		paginated := false
		for _, m := range paginationMarkers {
			if strings.Contains(href, m) {
				paginated = true
				break
			}
		}
		if !paginated {
			return
		}
		resolved, ok := urlutil.Resolve(pageURL, href)
		if !ok {
			return
		}
		if normalized, ok := urlutil.Normalize(resolved); ok {
			pages.add(normalized)
		}
	})
	return pages.items
}
