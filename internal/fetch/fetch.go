// Package fetch provides the concurrency-bounded HTTP client used by
// scraping and discovery.
package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/lojascan/storescan/internal/models"
	"github.com/lojascan/storescan/internal/parser"
)

const (
	maxAttempts  = 3
	defaultRetry = 400 * time.Millisecond
	defaultBlock = 600 * time.Millisecond
)

// blockedStatus marks responses from anti-bot or throttling layers that are
// worth waiting out with a longer backoff.
func blockedStatus(code int) bool {
	return code == http.StatusForbidden ||
		code == http.StatusTooManyRequests ||
		code == http.StatusServiceUnavailable
}

// Fetcher downloads pages with a global concurrency cap. A permit is held
// across all retry attempts for one URL, so the cap bounds in-flight work
// rather than in-flight requests.
type Fetcher struct {
	client *http.Client
	sem    *semaphore.Weighted
	logger *slog.Logger

	retryDelay time.Duration
	blockDelay time.Duration
}

// New creates a Fetcher allowing maxConcurrency simultaneous page fetches.
func New(maxConcurrency int, timeout time.Duration) *Fetcher {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		sem:        semaphore.NewWeighted(int64(maxConcurrency)),
		logger:     slog.Default().With("component", "fetcher"),
		retryDelay: defaultRetry,
		blockDelay: defaultBlock,
	}
}

// Close releases pooled connections.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

// FetchPage downloads and parses a product page. Failures degrade rather than
// error: after all attempts are exhausted the item carries only its URL.
func (f *Fetcher) FetchPage(ctx context.Context, url string) models.ScrapedItem {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return models.ScrapedItem{URL: url}
	}
	defer f.sem.Release(1)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, status, err := f.get(ctx, url)
		if err != nil {
			f.logger.Debug("fetch attempt failed", "url", url, "attempt", attempt, "error", err)
			if attempt < maxAttempts && !f.sleep(ctx, time.Duration(attempt)*f.retryDelay) {
				break
			}
			continue
		}
		if blockedStatus(status) {
			f.logger.Warn("request blocked", "url", url, "status", status, "attempt", attempt)
			if attempt < maxAttempts && !f.sleep(ctx, time.Duration(attempt)*f.blockDelay) {
				break
			}
			continue
		}
		if status >= 400 {
			f.logger.Debug("unexpected status", "url", url, "status", status, "attempt", attempt)
			if attempt < maxAttempts && !f.sleep(ctx, time.Duration(attempt)*f.retryDelay) {
				break
			}
			continue
		}
		return parser.ParsePage(url, body)
	}

	return models.ScrapedItem{URL: url}
}

// FetchText downloads a URL once and returns the body as a string. Blocked
// and not-found responses still return their body, since storefronts often
// serve usable markup with those statuses; any other failure returns "".
func (f *Fetcher) FetchText(ctx context.Context, url string) string {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return ""
	}
	defer f.sem.Release(1)

	body, status, err := f.get(ctx, url)
	if err != nil {
		f.logger.Debug("fetch failed", "url", url, "error", err)
		return ""
	}
	if status == http.StatusForbidden || status == http.StatusNotFound {
		return body
	}
	if status >= 400 {
		return ""
	}
	return body
}

func (f *Fetcher) get(ctx context.Context, url string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, err
	}
	setBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}
	return string(body), resp.StatusCode, nil
}

// sleep waits for the given duration unless the context ends first.
func (f *Fetcher) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// setBrowserHeaders makes requests look like an ordinary desktop browser
// session, which is enough for most storefronts.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}
