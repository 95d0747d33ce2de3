package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lojascan/storescan/internal/config"
	"github.com/lojascan/storescan/internal/scraper"
	"github.com/lojascan/storescan/internal/storage"
	"github.com/lojascan/storescan/pkg/logger"
)

func main() {
	var (
		searchURL   = flag.String("url", "", "search results page URL")
		maxPages    = flag.Int("max-pages", 5, "maximum result pages to visit")
		maxURLs     = flag.Int("max-urls", 500, "maximum product URLs to collect")
		productPath = flag.String("product-path", "/produto/", "path fragment identifying product URLs")
		query       = flag.String("query", "", "optional query: scrape discovered URLs and rank results")
		maxResults  = flag.Int("max-results", 100, "maximum results when scraping with a query")
		storePath   = flag.String("store", "", "optional link store file to record discovered URLs in")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *searchURL == "" {
		fmt.Fprintln(os.Stderr, "usage: search -url <search-url> [-query q] [-store file]")
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

	searchCfg := scraper.DefaultSearchConfig(*searchURL)
	searchCfg.MaxPages = *maxPages
	searchCfg.MaxURLs = *maxURLs
	searchCfg.ProductPath = *productPath

	urls, err := s.DiscoverSearchURLs(ctx, searchCfg)
	if err != nil {
		log.Error("search discovery failed", "error", err)
		os.Exit(1)
	}

	if *storePath != "" {
		store, err := storage.NewLinkStore(*storePath)
		if err != nil {
			log.Error("opening link store", "error", err)
			os.Exit(1)
		}
		if _, err := store.AddBatch(urls); err != nil {
			log.Error("recording urls", "error", err)
			os.Exit(1)
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if *query != "" {
		items := s.ScrapeAndOptimize(ctx, urls, *query, *maxResults)
		if err := encoder.Encode(items); err != nil {
			log.Error("encoding output", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := encoder.Encode(urls); err != nil {
		log.Error("encoding output", "error", err)
		os.Exit(1)
	}
}
