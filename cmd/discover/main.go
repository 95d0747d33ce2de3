package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lojascan/storescan/internal/config"
	"github.com/lojascan/storescan/internal/scraper"
	"github.com/lojascan/storescan/internal/storage"
	"github.com/lojascan/storescan/pkg/logger"
)

func splitPatterns(raw string) []string {
	var patterns []string
	for _, part := range strings.Split(raw, ",") {
		if pattern := strings.TrimSpace(part); pattern != "" {
			patterns = append(patterns, pattern)
		}
	}
	return patterns
}

func main() {
	var (
		baseURL     = flag.String("base", "", "site base URL, e.g. https://store.example.com")
		maxURLs     = flag.Int("max-urls", 1000, "maximum URLs to collect")
		include     = flag.String("include", "", "comma-separated regex patterns a URL must match")
		exclude     = flag.String("exclude", "", "comma-separated regex patterns that reject a URL")
		useSitemap  = flag.Bool("sitemap", true, "discover URLs from sitemaps")
		followLinks = flag.Bool("follow-links", false, "discover URLs by crawling same-host links")
		maxDepth    = flag.Int("depth", 1, "link crawl depth")
		storePath   = flag.String("store", "", "optional link store file to record discovered URLs in")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *baseURL == "" {
		fmt.Fprintln(os.Stderr, "usage: discover -base <url> [-sitemap] [-follow-links] [-store file]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := scraper.New(scraper.Options{
		MaxConcurrency: cfg.Scraper.MaxConcurrency,
		Timeout:        cfg.Scraper.Timeout,
		DelayMin:       cfg.Scraper.DelayMin,
		DelayMax:       cfg.Scraper.DelayMax,
	})

	discoveryCfg := scraper.DiscoveryConfig{
		BaseURL:         *baseURL,
		MaxURLs:         *maxURLs,
		IncludePatterns: splitPatterns(*include),
		ExcludePatterns: splitPatterns(*exclude),
		UseSitemap:      *useSitemap,
		FollowLinks:     *followLinks,
		MaxDepth:        *maxDepth,
	}

	urls, err := s.DiscoverURLs(ctx, discoveryCfg)
	if err != nil {
		log.Error("discovery failed", "error", err)
		os.Exit(1)
	}

	if *storePath != "" {
		store, err := storage.NewLinkStore(*storePath)
		if err != nil {
			log.Error("opening link store", "error", err)
			os.Exit(1)
		}
		added, err := store.AddBatch(urls)
		if err != nil {
			log.Error("recording urls", "error", err)
			os.Exit(1)
		}
		log.Info("urls recorded", "new", added, "total", len(urls))
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(urls); err != nil {
		log.Error("encoding output", "error", err)
		os.Exit(1)
	}
}
