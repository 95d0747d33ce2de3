package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverURLsFromSitemap(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "User-agent: *\nSitemap: %s/sitemap-products.xml\n", server.URL)
	})
	mux.HandleFunc("/sitemap-products.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>%s/produto/1</loc></url>
  <url><loc>%s/produto/2</loc></url>
  <url><loc>%s/institucional/sobre</loc></url>
</urlset>`, server.URL, server.URL, server.URL)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	cfg := DefaultDiscoveryConfig(server.URL)
	cfg.IncludePatterns = []string{`/produto/`}

	urls, err := New(testOptions()).DiscoverURLs(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{server.URL + "/produto/1", server.URL + "/produto/2"}, urls)
}

func TestDiscoverURLsSitemapIndex(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>%s/sitemap-1.xml</loc></sitemap>
  <sitemap><loc>%s/sitemap-2.xml</loc></sitemap>
</sitemapindex>`, server.URL, server.URL)
	})
	mux.HandleFunc("/sitemap-1.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<urlset><url><loc>%s/produto/1</loc></url></urlset>`, server.URL)
	})
	mux.HandleFunc("/sitemap-2.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<urlset><url><loc>%s/produto/2</loc></url></urlset>`, server.URL)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	t.Run("follows child sitemaps", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig(server.URL)
		urls, err := New(testOptions()).DiscoverURLs(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, []string{server.URL + "/produto/1", server.URL + "/produto/2"}, urls)
	})

	t.Run("respects max urls", func(t *testing.T) {
		cfg := DefaultDiscoveryConfig(server.URL)
		cfg.MaxURLs = 1
		urls, err := New(testOptions()).DiscoverURLs(context.Background(), cfg)
		require.NoError(t, err)
		assert.Len(t, urls, 1)
	})
}

func TestDiscoverURLsInvalidSitemapIgnored(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not xml <<<"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := DefaultDiscoveryConfig(server.URL)
	urls, err := New(testOptions()).DiscoverURLs(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestDiscoverURLsFromLinks(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<a href="/produto/1">Um</a>
			<a href="/categorias">Categorias</a>
			<a href="https://elsewhere.example.com/produto/9">Fora</a>
		</body></html>`)
	})
	mux.HandleFunc("/categorias", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<a href="/produto/2">Dois</a>
			<a href="/nivel-fundo">Fundo</a>
		</body></html>`)
	})
	mux.HandleFunc("/nivel-fundo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><a href="/produto/3">Três</a></body></html>`)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	cfg := DiscoveryConfig{
		BaseURL:         server.URL,
		MaxURLs:         100,
		IncludePatterns: []string{`/produto/`},
		FollowLinks:     true,
		MaxDepth:        1,
	}

	urls, err := New(testOptions()).DiscoverURLs(context.Background(), cfg)
	require.NoError(t, err)

	// depth 1 reaches /categorias but never /nivel-fundo; the cross-host
	// link is skipped
	assert.Equal(t, []string{server.URL + "/produto/1", server.URL + "/produto/2"}, urls)
}

func TestDiscoverURLsLinkCap(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<a href="/produto/1">Um</a>
			<a href="/produto/2">Dois</a>
			<a href="/produto/3">Três</a>
		</body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := DiscoveryConfig{
		BaseURL:         server.URL,
		MaxURLs:         2,
		IncludePatterns: []string{`/produto/`},
		FollowLinks:     true,
		MaxDepth:        1,
	}

	urls, err := New(testOptions()).DiscoverURLs(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, urls, 2)
}

func TestDiscoverURLsBadPattern(t *testing.T) {
	cfg := DefaultDiscoveryConfig("https://store.example.com")
	cfg.IncludePatterns = []string{`[broken`}

	_, err := New(testOptions()).DiscoverURLs(context.Background(), cfg)
	assert.Error(t, err)
}
