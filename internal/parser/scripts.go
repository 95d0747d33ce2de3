package parser

import (
	"encoding/json"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// scriptData carries whatever the structured-data pass recovered. Zero values
// mean "not found"; price is the authoritative signal.
type scriptData struct {
	title    string
	raw      string
	currency string
	price    *float64
}

// nextPriceKeys are the field names e-commerce Next.js payloads use for
// prices. A key's value may itself be an object holding the amount under one
// of nextPriceSubKeys.
var nextPriceKeys = map[string]struct{}{
	"price":             {},
	"bestPrice":         {},
	"priceValue":        {},
	"salePrice":         {},
	"spotPrice":         {},
	"pricePix":          {},
	"pricePIX":          {},
	"priceFrom":         {},
	"priceTo":           {},
	"priceWithDiscount": {},
	"priceWithOffer":    {},
	"priceFinal":        {},
	"cashPrice":         {},
	"pixPrice":          {},
}

var nextPriceSubKeys = []string{"value", "amount", "current", "price"}

var nextTitleKeys = map[string]struct{}{
	"name":        {},
	"productName": {},
	"title":       {},
}

// extractFromScripts runs the structured-data pass: JSON-LD blocks in
// document order, first one yielding a price wins; otherwise a single
// __NEXT_DATA__ blob is walked. Malformed JSON in any block is skipped.
func extractFromScripts(doc *goquery.Document) scriptData {
	var data scriptData

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if text == "" {
			return true
		}
		var payload any
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			return true
		}
		data = extractJSONLD(payload)
		return data.price == nil
	})
	if data.price != nil {
		return data
	}

	if text := doc.Find("script#__NEXT_DATA__").First().Text(); text != "" {
		var payload any
		if err := json.Unmarshal([]byte(text), &payload); err == nil {
			data = extractFromNextData(payload)
		}
	}
	return data
}

// extractJSONLD resolves a price from a JSON-LD value: through offers
// (object or array, first parsed offer wins) or a direct price/priceCurrency
// pair. The entity name rides along as a candidate title.
func extractJSONLD(payload any) scriptData {
	switch value := payload.(type) {
	case []any:
		for _, item := range value {
			if data := extractJSONLD(item); data.price != nil {
				return data
			}
		}
	case map[string]any:
		var data scriptData
		if name, ok := value["name"].(string); ok {
			data.title = name
		}
		switch offers := value["offers"].(type) {
		case []any:
			for _, offer := range offers {
				if offerData := extractJSONLD(offer); offerData.price != nil {
					return offerData
				}
			}
		case map[string]any:
			if raw, ok := offers["price"]; ok && raw != nil {
				parsed, _ := ParsePrice(stringify(raw))
				currency, _ := offers["priceCurrency"].(string)
				return scriptData{title: data.title, raw: stringify(raw), currency: currency, price: parsed}
			}
		}
		if raw, ok := value["price"]; ok && raw != nil {
			parsed, _ := ParsePrice(stringify(raw))
			data.currency, _ = value["priceCurrency"].(string)
			data.raw = stringify(raw)
			data.price = parsed
		}
		return data
	}
	return scriptData{}
}

// extractFromNextData walks every key/value pair of the embedded framework
// state. The first string under a known title key becomes the title; the
// minimum parsed value across known price keys becomes the price.
func extractFromNextData(payload any) scriptData {
	var data scriptData

	walkJSON(payload, func(key string, value any) {
		if data.title == "" {
			if _, ok := nextTitleKeys[key]; ok {
				if s, isString := value.(string); isString {
					data.title = s
				}
			}
		}

		if _, ok := nextPriceKeys[key]; !ok {
			return
		}
		if nested, isMap := value.(map[string]any); isMap {
			for _, sub := range nextPriceSubKeys {
				if v, present := nested[sub]; present {
					value = v
					break
				}
			}
		}
		parsed, currency := ParsePrice(stringify(value))
		if parsed == nil {
			return
		}
		if data.price == nil || *parsed < *data.price {
			data.price = parsed
			data.raw = stringify(value)
			data.currency = currency
		}
	})
	return data
}

// walkJSON visits every key/value pair of a decoded JSON tree, depth first.
// Array elements are traversed but carry no key of their own.
func walkJSON(value any, visit func(key string, value any)) {
	switch tree := value.(type) {
	case map[string]any:
		for key, child := range tree {
			visit(key, child)
			walkJSON(child, visit)
		}
	case []any:
		for _, item := range tree {
			walkJSON(item, visit)
		}
	}
}

// stringify renders a scalar JSON value the way it appeared numerically;
// non-scalars come back empty and fail price parsing downstream.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
