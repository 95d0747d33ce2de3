package scraper

import (
	"context"
	"fmt"
	"strings"
)

// DiscoveryConfig controls the URL discovery crawl for one site.
type DiscoveryConfig struct {
	BaseURL         string
	MaxURLs         int
	IncludePatterns []string
	ExcludePatterns []string
	UseSitemap      bool
	FollowLinks     bool
	MaxDepth        int
}

// DefaultDiscoveryConfig returns the standard discovery setup for a site:
// sitemap-first, no link crawl, up to 1000 URLs.
func DefaultDiscoveryConfig(baseURL string) DiscoveryConfig {
	return DiscoveryConfig{
		BaseURL:    baseURL,
		MaxURLs:    1000,
		UseSitemap: true,
		MaxDepth:   1,
	}
}

// DiscoverURLs finds product-page URLs on a site using the enabled
// strategies, sitemap before link following. The union preserves first-seen
// order and is truncated to MaxURLs. Individual fetch failures are skipped;
// the only error is an invalid filter pattern.
func (s *Scraper) DiscoverURLs(ctx context.Context, cfg DiscoveryConfig) ([]string, error) {
	filter, err := newURLFilter(cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("discovery config: %w", err)
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	logger := s.logger.With("base_url", base)

	fetcher := s.newFetcher()
	defer fetcher.Close()
	limiter := s.newLimiter()

	discovered := newOrderedSet()

	if cfg.UseSitemap {
		s.discoverFromSitemap(ctx, fetcher, limiter, base, filter, cfg.MaxURLs, discovered)
		logger.Info("sitemap discovery finished", "urls", discovered.len())
	}

	if cfg.FollowLinks && discovered.len() < cfg.MaxURLs {
		s.discoverFromLinks(ctx, fetcher, limiter, base, filter, cfg, discovered)
		logger.Info("link discovery finished", "urls", discovered.len())
	}

	urls := discovered.items
	if len(urls) > cfg.MaxURLs {
		urls = urls[:cfg.MaxURLs]
	}
	return urls, nil
}
