package scraper

import (
	"context"

	"github.com/lojascan/storescan/internal/fetch"
	"github.com/lojascan/storescan/internal/ratelimit"
	"github.com/lojascan/storescan/internal/urlutil"
)

type crawlNode struct {
	url   string
	depth int
}

// discoverFromLinks crawls same-host links breadth first from the base URL,
// collecting filtered URLs until the depth limit, the URL cap or the frontier
// runs out. Cross-host links are never followed.
func (s *Scraper) discoverFromLinks(ctx context.Context, fetcher *fetch.Fetcher, limiter *ratelimit.Limiter, base string, filter *urlFilter, cfg DiscoveryConfig, discovered *orderedSet) {
	host := urlutil.Host(base)
	if host == "" {
		return
	}

	visited := make(map[string]struct{})
	var queue fifo[crawlNode]
	queue.push(crawlNode{url: base, depth: 0})

	for !queue.empty() {
		node := queue.pop()
		if _, ok := visited[node.url]; ok {
			continue
		}
		if node.depth > cfg.MaxDepth {
			continue
		}
		visited[node.url] = struct{}{}

		s.wait(ctx, limiter)
		html := fetcher.FetchText(ctx, node.url)
		if html == "" {
			continue
		}

		for _, link := range urlutil.ExtractLinks(html, node.url, nil, nil) {
			if urlutil.Host(link) != host {
				continue
			}
			if filter.allowed(link) {
				if discovered.len() >= cfg.MaxURLs {
					return
				}
				discovered.add(link)
			}
			if node.depth+1 <= cfg.MaxDepth {
				if _, seen := visited[link]; !seen {
					queue.push(crawlNode{url: link, depth: node.depth + 1})
				}
			}
		}
	}
}
