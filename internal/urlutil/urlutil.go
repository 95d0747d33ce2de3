// Package urlutil holds the URL normalization, filtering and link-extraction
// helpers shared by scraping and discovery.
package urlutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Normalize returns the canonical form of an absolute URL with its fragment
// stripped. URLs without a scheme or host are rejected.
func Normalize(raw string) (string, bool) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	parsed.Fragment = ""
	return parsed.String(), true
}

// Resolve joins a possibly-relative reference against a base URL.
func Resolve(base, ref string) (string, bool) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	resolved, err := baseURL.Parse(ref)
	if err != nil {
		return "", false
	}
	return resolved.String(), true
}

// Host returns the host of a URL, or "" when it cannot be parsed.
func Host(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Host
}

// CompilePatterns compiles filter patterns case-insensitively. A broken
// pattern is a configuration error and fails immediately; a silently
// mismatching filter would be worse. nil input compiles to nil, meaning
// "no restriction".
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Allowed reports whether a URL passes the include/exclude filters. An empty
// include list admits everything; a matching exclude pattern always wins.
func Allowed(rawURL string, include, exclude []*regexp.Regexp) bool {
	if len(include) > 0 {
		matched := false
		for _, re := range include {
			if re.MatchString(rawURL) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, re := range exclude {
		if re.MatchString(rawURL) {
			return false
		}
	}
	return true
}

// ExtractLinks resolves every anchor href in the document against baseURL,
// normalizes it and applies the filters. Empty, malformed and
// javascript-scheme hrefs are skipped.
func ExtractLinks(html, baseURL string, include, exclude []*regexp.Regexp) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" {
			return
		}
		absolute, ok := Resolve(baseURL, href)
		if !ok {
			return
		}
		normalized, ok := Normalize(absolute)
		if !ok {
			return
		}
		if !Allowed(normalized, include, exclude) {
			return
		}
		links = append(links, normalized)
	})
	return links
}
