package scraper

import (
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/lojascan/storescan/internal/fetch"
	"github.com/lojascan/storescan/internal/ratelimit"
	"github.com/lojascan/storescan/internal/urlutil"
)

// discoverFromSitemap walks the site's sitemaps breadth first, following
// sitemap-index entries and collecting page URLs that pass the filter, until
// the queue drains or maxURLs is reached.
func (s *Scraper) discoverFromSitemap(ctx context.Context, fetcher *fetch.Fetcher, limiter *ratelimit.Limiter, base string, filter *urlFilter, maxURLs int, discovered *orderedSet) {
	var queue fifo[string]
	for _, sitemapURL := range s.findSitemaps(ctx, fetcher, base) {
		queue.push(sitemapURL)
	}

	visited := make(map[string]struct{})
	for !queue.empty() && discovered.len() < maxURLs {
		sitemapURL := queue.pop()
		if _, ok := visited[sitemapURL]; ok {
			continue
		}
		visited[sitemapURL] = struct{}{}

		s.wait(ctx, limiter)
		content := fetcher.FetchText(ctx, sitemapURL)
		if content == "" {
			continue
		}
		urls, sitemaps := parseSitemap(content)
		for _, child := range sitemaps {
			queue.push(child)
		}
		for _, pageURL := range urls {
			normalized, ok := urlutil.Normalize(pageURL)
			if !ok || !filter.allowed(normalized) {
				continue
			}
			if discovered.len() >= maxURLs {
				return
			}
			discovered.add(normalized)
		}
	}
}

// findSitemaps resolves the sitemap entry points for a site: every
// "Sitemap:" line in robots.txt, plus the two conventional locations as
// fallbacks. Duplicates are removed, first occurrence kept.
func (s *Scraper) findSitemaps(ctx context.Context, fetcher *fetch.Fetcher, base string) []string {
	candidates := newOrderedSet()

	robots := fetcher.FetchText(ctx, base+"/robots.txt")
	for _, line := range strings.Split(robots, "\n") {
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "sitemap:") {
			continue
		}
		_, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if sitemapURL := strings.TrimSpace(value); sitemapURL != "" {
			candidates.add(sitemapURL)
		}
	}

	candidates.add(base + "/sitemap.xml")
	candidates.add(base + "/sitemap_index.xml")
	return candidates.items
}

// parseSitemap pulls <loc> values out of a sitemap document. A urlset root
// yields page URLs; a sitemapindex root yields child sitemap URLs. Anything
// that fails to parse yields nothing.
func parseSitemap(content string) (urls, sitemaps []string) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	root := ""
	inLoc := false
	var locs []string
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil
		}
		switch t := token.(type) {
		case xml.StartElement:
			if root == "" {
				root = t.Name.Local
			}
			inLoc = t.Name.Local == "loc"
		case xml.EndElement:
			inLoc = false
		case xml.CharData:
			if inLoc {
				if loc := strings.TrimSpace(string(t)); loc != "" {
					locs = append(locs, loc)
				}
			}
		}
	}

	switch root {
	case "sitemapindex":
		return nil, locs
	case "urlset":
		return locs, nil
	}
	return nil, nil
}
