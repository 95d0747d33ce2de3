// Package storage persists discovered product links and their scrape results
// as a JSON file, so runs can resume where the previous one stopped.
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ProductLink is one discovered URL and whatever scraping found there.
type ProductLink struct {
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	Price     *float64  `json:"price,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	Status    string    `json:"status"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Error     string    `json:"error,omitempty"`
}

// LinkStore is a URL-keyed store of product links backed by one JSON file.
// Every mutation is written through atomically.
type LinkStore struct {
	mu     sync.Mutex
	path   string
	links  map[string]*ProductLink
	logger *slog.Logger
}

// NewLinkStore opens (or creates) the store at path.
func NewLinkStore(path string) (*LinkStore, error) {
	store := &LinkStore{
		path:   path,
		links:  make(map[string]*ProductLink),
		logger: slog.Default().With("component", "storage"),
	}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *LinkStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading link store: %w", err)
	}
	var links []*ProductLink
	if err := json.Unmarshal(data, &links); err != nil {
		return fmt.Errorf("parsing link store: %w", err)
	}
	for _, link := range links {
		s.links[link.URL] = link
	}
	s.logger.Info("link store loaded", "path", s.path, "links", len(links))
	return nil
}

// Add records a URL as pending. Known URLs are left untouched.
func (s *LinkStore) Add(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[url]; ok {
		return nil
	}
	now := time.Now()
	s.links[url] = &ProductLink{URL: url, Status: StatusPending, AddedAt: now, UpdatedAt: now}
	return s.save()
}

// AddBatch records many URLs as pending in one write and returns how many
// were new.
func (s *LinkStore) AddBatch(urls []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	now := time.Now()
	for _, url := range urls {
		if _, ok := s.links[url]; ok {
			continue
		}
		s.links[url] = &ProductLink{URL: url, Status: StatusPending, AddedAt: now, UpdatedAt: now}
		added++
	}
	if added == 0 {
		return 0, nil
	}
	return added, s.save()
}

// Get returns a copy of the link for a URL.
func (s *LinkStore) Get(url string) (ProductLink, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[url]
	if !ok {
		return ProductLink{}, false
	}
	return *link, true
}

// Pending returns the URLs not yet scraped, in no particular order.
func (s *LinkStore) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var urls []string
	for url, link := range s.links {
		if link.Status == StatusPending {
			urls = append(urls, url)
		}
	}
	return urls
}

// SetResult stores a scrape outcome for a URL. An outcome with neither title
// nor price counts as failed.
func (s *LinkStore) SetResult(url, title string, price *float64, currency string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[url]
	if !ok {
		now := time.Now()
		link = &ProductLink{URL: url, AddedAt: now}
		s.links[url] = link
	}
	link.Title = title
	link.Price = price
	link.Currency = currency
	link.UpdatedAt = time.Now()
	if title == "" && price == nil {
		link.Status = StatusFailed
		link.Error = "no data extracted"
	} else {
		link.Status = StatusCompleted
		link.Error = ""
	}
	return s.save()
}

// MarkFailed records a scrape failure for a URL.
func (s *LinkStore) MarkFailed(url, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[url]
	if !ok {
		now := time.Now()
		link = &ProductLink{URL: url, AddedAt: now}
		s.links[url] = link
	}
	link.Status = StatusFailed
	link.Error = reason
	link.UpdatedAt = time.Now()
	return s.save()
}

// Stats returns link counts by status.
func (s *LinkStore) Stats() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := map[string]int{StatusPending: 0, StatusCompleted: 0, StatusFailed: 0}
	for _, link := range s.links {
		stats[link.Status]++
	}
	return stats
}

// save writes the store through a temp file and rename, so a crash mid-write
// never leaves a truncated file. Callers must hold the lock.
func (s *LinkStore) save() error {
	links := make([]*ProductLink, 0, len(s.links))
	for _, link := range s.links {
		links = append(links, link)
	}
	data, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding link store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing link store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing link store: %w", err)
	}
	return nil
}
