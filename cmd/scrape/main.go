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

func main() {
	var (
		urlList    = flag.String("urls", "", "comma-separated product page URLs")
		query      = flag.String("query", "", "optional search query to rank and filter results")
		maxResults = flag.Int("max-results", 100, "maximum results after optimization")
		storePath  = flag.String("store", "", "optional link store file to read pending URLs from and write results to")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var urls []string
	for _, raw := range strings.Split(*urlList, ",") {
		if url := strings.TrimSpace(raw); url != "" {
			urls = append(urls, url)
		}
	}

	var store *storage.LinkStore
	if *storePath != "" {
		var err error
		store, err = storage.NewLinkStore(*storePath)
		if err != nil {
			log.Error("opening link store", "error", err)
			os.Exit(1)
		}
		if len(urls) == 0 {
			urls = store.Pending()
		}
	}
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: scrape -urls <url>[,<url>...] [-query q] [-store file]")
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

	items := s.ScrapeAndOptimize(ctx, urls, *query, *maxResults)

	if store != nil {
		for _, item := range items {
			if err := store.SetResult(item.URL, item.Title, item.Price, item.Currency); err != nil {
				log.Error("recording result", "url", item.URL, "error", err)
			}
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(items); err != nil {
		log.Error("encoding output", "error", err)
		os.Exit(1)
	}
}
