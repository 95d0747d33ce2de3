package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lojascan/storescan/internal/models"
)

// pricePatterns match currency-prefixed/suffixed amounts and bare decimal
// forms, in both Brazilian (1.234,56) and US (1,234.56) conventions. Order
// matters only for raw-text capture; the final price is the minimum across
// all parsed candidates.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`R\$\s*\d{1,3}(?:\.\d{3})*(?:,\d{2})?`),
	regexp.MustCompile(`\d{1,3}(?:\.\d{3})*(?:,\d{2})?\s*R\$`),
	regexp.MustCompile(`\$\s*\d{1,3}(?:,\d{3})*(?:\.\d{2})?`),
	regexp.MustCompile(`€\s*\d{1,3}(?:\.\d{3})*(?:,\d{2})?`),
	regexp.MustCompile(`\d{1,3}(?:\.\d{3})*,\d{2}`),
	regexp.MustCompile(`\d{1,3}(?:,\d{3})*\.\d{2}`),
}

var priceMetaSelectors = []string{
	`meta[property="product:price:amount"]`,
	`meta[property="og:price:amount"]`,
	`meta[itemprop="price"]`,
	`meta[name="twitter:data1"]`,
}

// ParsePage extracts title, price and currency from fetched HTML. Two passes
// run: a heuristic pass over meta tags, visible text and the raw markup, and
// a structured-data pass over JSON-LD and __NEXT_DATA__ scripts. Structured
// data wins when it yields anything; the heuristic pass fills the gaps.
func ParsePage(pageURL, html string) models.ScrapedItem {
	item := models.ScrapedItem{URL: pageURL}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return item
	}

	title := extractTitle(doc)
	raw, currency, price := extractPrice(doc, html)

	script := extractFromScripts(doc)
	if script.title != "" {
		title = script.title
	}
	if script.price != nil {
		raw = script.raw
		if script.currency != "" {
			currency = script.currency
		}
		price = script.price
	}

	item.Title = title
	item.Price = price
	item.Currency = currency
	item.RawPrice = raw
	return item
}

// extractTitle resolves og:title, then the first h1, then the document title.
func extractTitle(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// extractPrice collects candidates from price meta tags, the rendered text
// and the raw markup, parses each, and keeps the minimum. Promotional pages
// tend to show a struck-through original next to the real price, so the
// lowest parsed value is the one offered.
func extractPrice(doc *goquery.Document, html string) (raw, currency string, price *float64) {
	var candidates []string

	for _, selector := range priceMetaSelectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok && content != "" {
			candidates = append(candidates, strings.TrimSpace(content))
		}
	}

	bodyText := doc.Text()
	for _, pattern := range pricePatterns {
		candidates = append(candidates, pattern.FindAllString(bodyText, -1)...)
	}

	// Raw markup catches values inside attributes and scripts that never
	// render as text.
	for _, pattern := range pricePatterns {
		candidates = append(candidates, pattern.FindAllString(html, -1)...)
	}

	for _, value := range candidates {
		parsed, curr := ParsePrice(value)
		if parsed == nil {
			continue
		}
		if price == nil || *parsed < *price {
			price = parsed
			raw = value
			currency = curr
		}
	}
	return raw, currency, price
}
