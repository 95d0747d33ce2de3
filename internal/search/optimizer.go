// Package search ranks, filters and deduplicates scraped items against a
// search query.
package search

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/lojascan/storescan/internal/models"
)

const (
	// Results scoring below this are considered unrelated to the query.
	minRelevanceScore = 10.0

	// DefaultSimilarityThreshold is the title similarity above which two
	// results are treated as the same product.
	DefaultSimilarityThreshold = 0.85

	// DefaultMaxResults caps the optimized result list.
	DefaultMaxResults = 100

	minTitleRunes = 3
	maxTitleRunes = 200
)

var wordRE = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// stopwords are Portuguese function words ignored when matching query words
// against titles.
var stopwords = map[string]struct{}{
	"de": {}, "o": {}, "a": {}, "em": {}, "para": {}, "com": {}, "por": {},
	"que": {}, "e": {}, "ou": {}, "um": {}, "uma": {}, "os": {}, "as": {},
	"nos": {}, "nas": {}, "ao": {}, "à": {}, "essa": {}, "esse": {},
	"este": {}, "esses": {}, "essas": {}, "esta": {}, "estão": {},
	"estou": {},
}

// navigationPatterns match titles that come from site chrome rather than
// product listings.
var navigationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^home$`),
	regexp.MustCompile(`^menu`),
	regexp.MustCompile(`^back`),
	regexp.MustCompile(`^voltar`),
	regexp.MustCompile(`^mais`),
	regexp.MustCompile(`^carrinho`),
	regexp.MustCompile(`^conta`),
	regexp.MustCompile(`^sair`),
	regexp.MustCompile(`^entrar`),
	regexp.MustCompile(`^login`),
	regexp.MustCompile(`^registr`),
}

// Optimizer scores scraped items against one search query.
type Optimizer struct {
	query      string
	meaningful map[string]struct{}
}

// NewOptimizer prepares an optimizer for a query. Matching is
// case-insensitive and ignores stopwords.
func NewOptimizer(query string) *Optimizer {
	query = strings.ToLower(strings.TrimSpace(query))

	meaningful := make(map[string]struct{})
	for _, word := range wordRE.FindAllString(query, -1) {
		if _, skip := stopwords[word]; !skip {
			meaningful[word] = struct{}{}
		}
	}
	return &Optimizer{query: query, meaningful: meaningful}
}

// CalculateRelevance scores a title against the query on a 0-100 scale.
// Word overlap dominates, overall string similarity refines, and an exact
// substring match of the whole query earns a bonus.
func (o *Optimizer) CalculateRelevance(title string) float64 {
	if title == "" {
		return 0
	}
	lower := strings.ToLower(title)

	score := 0.0
	if len(o.meaningful) > 0 {
		matched := 0
		titleWords := make(map[string]struct{})
		for _, word := range wordRE.FindAllString(lower, -1) {
			titleWords[word] = struct{}{}
		}
		for word := range o.meaningful {
			if _, ok := titleWords[word]; ok {
				matched++
			}
		}
		score += float64(matched) / float64(len(o.meaningful)) * 50
	}

	score += similarity(o.query, lower) * 40

	if strings.Contains(lower, o.query) {
		score += 10
	}
	return math.Min(100, score)
}

// IsLikelyProduct reports whether an item looks like an actual product:
// it must be priced, reasonably titled, and not a navigation element.
func (o *Optimizer) IsLikelyProduct(title string, price *float64) bool {
	if price == nil {
		return false
	}
	title = strings.TrimSpace(title)
	runes := len([]rune(title))
	if runes < minTitleRunes || runes > maxTitleRunes {
		return false
	}
	lower := strings.ToLower(title)
	for _, pattern := range navigationPatterns {
		if pattern.MatchString(lower) {
			return false
		}
	}
	return true
}

// FilterAndRank drops non-product and irrelevant items and returns the rest
// ordered by descending relevance. The sort is stable, so equally scored
// items keep their scrape order.
func (o *Optimizer) FilterAndRank(items []models.ScrapedItem) []models.SearchResult {
	var results []models.SearchResult
	for _, item := range items {
		if !o.IsLikelyProduct(item.Title, item.Price) {
			continue
		}
		score := o.CalculateRelevance(item.Title)
		if score < minRelevanceScore {
			continue
		}
		results = append(results, models.SearchResult{
			URL:            item.URL,
			Title:          item.Title,
			Price:          item.Price,
			Currency:       item.Currency,
			RelevanceScore: score,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	return results
}

// Deduplicate removes results whose title is nearly identical to an earlier
// kept result. The first occurrence, which ranks highest after sorting, is
// the one kept. Empty titles never count as duplicates of each other.
func Deduplicate(results []models.SearchResult, threshold float64) []models.SearchResult {
	var kept []models.SearchResult
	for _, candidate := range results {
		duplicate := false
		for _, existing := range kept {
			if candidate.Title == "" || existing.Title == "" {
				continue
			}
			if similarity(strings.ToLower(candidate.Title), strings.ToLower(existing.Title)) >= threshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}
	return kept
}

// Optimize runs the full pipeline: filter, rank, optionally deduplicate,
// and truncate to maxResults.
func Optimize(query string, items []models.ScrapedItem, maxResults int, removeDuplicates bool) []models.SearchResult {
	if maxResults < 1 {
		maxResults = DefaultMaxResults
	}
	optimizer := NewOptimizer(query)
	results := optimizer.FilterAndRank(items)
	if removeDuplicates {
		results = Deduplicate(results, DefaultSimilarityThreshold)
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// similarity is the ratio of matching characters between two strings, as a
// sequence matcher computes it.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	matcher := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return matcher.Ratio()
}
