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

func TestDiscoverSearchURLsFollowsPagination(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/busca", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			fmt.Fprintf(w, `<html><body>
				<a href="/produto/1/tenis-azul">Um</a>
				<a href="/busca?q=tenis&page=2">Próxima</a>
			</body></html>`)
		case "2":
			fmt.Fprintf(w, `<html><body>
				<a href="/produto/2/tenis-preto">Dois</a>
			</body></html>`)
		}
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	cfg := DefaultSearchConfig(server.URL + "/busca?q=tenis")
	urls, err := New(testOptions()).DiscoverSearchURLs(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{
		server.URL + "/produto/1/tenis-azul",
		server.URL + "/produto/2/tenis-preto",
	}, urls)
}

func TestDiscoverSearchURLsMaxPages(t *testing.T) {
	var pagesServed int
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/busca", func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		page := r.URL.Query().Get("page")
		if page == "" {
			page = "1"
		}
		fmt.Fprintf(w, `<html><body>
			<a href="/produto/%s/item">Item</a>
			<a href="/busca?page=%s0">Próxima</a>
		</body></html>`, page, page)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	cfg := DefaultSearchConfig(server.URL + "/busca")
	cfg.MaxPages = 2

	urls, err := New(testOptions()).DiscoverSearchURLs(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, pagesServed)
	assert.Len(t, urls, 2)
}

func TestDiscoverSearchURLsMaxURLs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/busca", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<a href="/produto/1/a">A</a>
			<a href="/produto/2/b">B</a>
			<a href="/produto/3/c">C</a>
		</body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := DefaultSearchConfig(server.URL + "/busca")
	cfg.MaxURLs = 2

	urls, err := New(testOptions()).DiscoverSearchURLs(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, urls, 2)
}

func TestDiscoverSearchURLsFromRawMarkup(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/busca", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<div data-href="%s/produto/10/oculos"></div>
			<script>var u = "/produto/11/bone";</script>
		</body></html>`, server.URL)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	cfg := DefaultSearchConfig(server.URL + "/busca")
	urls, err := New(testOptions()).DiscoverSearchURLs(context.Background(), cfg)
	require.NoError(t, err)

	assert.Contains(t, urls, server.URL+"/produto/10/oculos")
	assert.Contains(t, urls, server.URL+"/produto/11/bone")
}

func TestDiscoverSearchURLsFromNextData(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/busca", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head>
			<script id="__NEXT_DATA__" type="application/json">
			{"props":{"results":[
				{"code":123,"friendlyName":"tenis-runner"},
				{"externalUrl":"%s/produto/77/sandalia"},
				{"path":"/produto/88/chinelo"},
				{"code":3.5,"friendlyName":"ignorado-float"},
				{"code":99}
			]}}
			</script>
		</head><body></body></html>`, server.URL)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	cfg := DefaultSearchConfig(server.URL + "/busca")
	urls, err := New(testOptions()).DiscoverSearchURLs(context.Background(), cfg)
	require.NoError(t, err)

	assert.Contains(t, urls, server.URL+"/produto/123/tenis-runner")
	assert.Contains(t, urls, server.URL+"/produto/77/sandalia")
	assert.Contains(t, urls, server.URL+"/produto/88/chinelo")
	for _, url := range urls {
		assert.NotContains(t, url, "ignorado-float")
		assert.NotContains(t, url, "/produto/99")
	}
}

func TestDiscoverSearchURLsCustomProductPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<a href="/item/55/gadget">Gadget</a>
			<a href="/produto/1/nao-conta">Outro</a>
		</body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := DefaultSearchConfig(server.URL + "/search")
	cfg.ProductPath = "/item/"

	urls, err := New(testOptions()).DiscoverSearchURLs(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{server.URL + "/item/55/gadget"}, urls)
}
