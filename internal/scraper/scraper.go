// Package scraper coordinates page scraping and URL discovery over the
// fetch, parser and urlutil layers.
package scraper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lojascan/storescan/internal/fetch"
	"github.com/lojascan/storescan/internal/models"
	"github.com/lojascan/storescan/internal/ratelimit"
)

const (
	defaultMaxConcurrency = 20
	defaultTimeout        = 10 * time.Second
)

// Options configure a Scraper. Zero values fall back to defaults; delays
// default to zero, meaning no politeness pause between requests.
type Options struct {
	MaxConcurrency int
	Timeout        time.Duration
	DelayMin       time.Duration
	DelayMax       time.Duration
}

// Scraper scrapes product pages and discovers product URLs. Each invocation
// uses its own fetcher and queues, so instances are safe for concurrent use.
type Scraper struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Scraper with the given options.
func New(opts Options) *Scraper {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = defaultMaxConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Scraper{
		opts:   opts,
		logger: slog.Default().With("component", "scraper"),
	}
}

// ScrapeURLs fetches and parses every URL concurrently, bounded by the
// configured concurrency cap. The result slice has one item per input URL in
// input order; pages that could not be fetched yield URL-only items.
func (s *Scraper) ScrapeURLs(ctx context.Context, urls []string) []models.ScrapedItem {
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)
	logger.Info("scraping urls", "count", len(urls))

	fetcher := s.newFetcher()
	defer fetcher.Close()
	limiter := s.newLimiter()

	items := make([]models.ScrapedItem, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			s.wait(ctx, limiter)
			items[i] = fetcher.FetchPage(ctx, url)
		}(i, url)
	}
	wg.Wait()

	scraped := 0
	for _, item := range items {
		if item.Title != "" || item.Price != nil {
			scraped++
		}
	}
	logger.Info("scraping finished", "count", len(urls), "with_data", scraped)
	return items
}

func (s *Scraper) newFetcher() *fetch.Fetcher {
	return fetch.New(s.opts.MaxConcurrency, s.opts.Timeout)
}

func (s *Scraper) newLimiter() *ratelimit.Limiter {
	if s.opts.DelayMin <= 0 {
		return nil
	}
	return ratelimit.New(s.opts.DelayMin, s.opts.DelayMax)
}

func (s *Scraper) wait(ctx context.Context, limiter *ratelimit.Limiter) {
	if limiter != nil {
		_ = limiter.Wait(ctx)
	}
}
