package scraper

import (
	"regexp"

	"github.com/lojascan/storescan/internal/urlutil"
)

// urlFilter bundles compiled include/exclude patterns for a crawl.
type urlFilter struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

func newURLFilter(include, exclude []string) (*urlFilter, error) {
	inc, err := urlutil.CompilePatterns(include)
	if err != nil {
		return nil, err
	}
	exc, err := urlutil.CompilePatterns(exclude)
	if err != nil {
		return nil, err
	}
	return &urlFilter{include: inc, exclude: exc}, nil
}

func (f *urlFilter) allowed(url string) bool {
	return urlutil.Allowed(url, f.include, f.exclude)
}
