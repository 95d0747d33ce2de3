package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{MaxConcurrency: 4, Timeout: 2 * time.Second}
}

func TestScrapeURLsKeepsInputOrder(t *testing.T) {
	mux := http.NewServeMux()
	for i := 1; i <= 3; i++ {
		page := fmt.Sprintf(`<html><body><h1>Produto %d</h1><span>R$ %d,00</span></body></html>`, i, i*10)
		mux.HandleFunc(fmt.Sprintf("/p/%d", i), func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(page))
		})
	}
	server := httptest.NewServer(mux)
	defer server.Close()

	urls := []string{server.URL + "/p/1", server.URL + "/p/2", server.URL + "/p/3"}
	items := New(testOptions()).ScrapeURLs(context.Background(), urls)

	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, urls[i], item.URL)
		assert.Equal(t, fmt.Sprintf("Produto %d", i+1), item.Title)
		require.NotNil(t, item.Price)
	}
}

func TestScrapeURLsDegradesPerURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>Produto</h1><span>R$ 10,00</span></body></html>`))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	urls := []string{server.URL + "/ok", server.URL + "/gone"}
	items := New(testOptions()).ScrapeURLs(context.Background(), urls)

	require.Len(t, items, 2)
	assert.Equal(t, "Produto", items[0].Title)
	assert.Equal(t, urls[1], items[1].URL)
	assert.Empty(t, items[1].Title)
	assert.Nil(t, items[1].Price)
}

func TestScrapeURLsEmptyInput(t *testing.T) {
	items := New(testOptions()).ScrapeURLs(context.Background(), nil)
	assert.Empty(t, items)
}
