// Package jsonld finds schema.org JSON-LD blocks embedded in HTML pages.
package jsonld

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const selector = `script[type="application/ld+json"]`

// Has reports whether the text contains a JSON-LD script tag. It is a cheap
// pre-check used by CanHandle predicates before any HTML parsing.
func Has(text string) bool {
	return strings.Contains(strings.ToLower(text), "application/ld+json")
}

// Records parses every JSON-LD block in doc and returns the objects found,
// with arrays and "@graph" containers flattened. Blocks that fail to parse
// are skipped.
func Records(doc *goquery.Document) []map[string]any {
	var out []map[string]any
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		body := strings.TrimSpace(s.Text())
		if body == "" {
			return
		}
		dec := json.NewDecoder(bytes.NewReader([]byte(body)))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return
		}
		out = append(out, flatten(v)...)
	})
	return out
}

// Parse is Records over raw HTML text.
func Parse(html string) []map[string]any {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return Records(doc)
}

func flatten(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		var out []map[string]any
		for _, item := range t {
			out = append(out, flatten(item)...)
		}
		return out
	case map[string]any:
		if graph, ok := t["@graph"]; ok {
			return flatten(graph)
		}
		if list, ok := t["itemListElement"].([]any); ok && IsType(t, "ItemList") {
			var out []map[string]any
			for _, el := range list {
				if m, ok := el.(map[string]any); ok {
					if item, ok := m["item"]; ok {
						out = append(out, flatten(item)...)
						continue
					}
					out = append(out, m)
				}
			}
			return out
		}
		return []map[string]any{t}
	default:
		return nil
	}
}

// Types returns the record's "@type" values; the field may be a string or
// a list.
func Types(record map[string]any) []string {
	switch t := record["@type"].(type) {
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, v := range t {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// IsType reports whether the record has any of the given types
// (case-insensitive).
func IsType(record map[string]any, types ...string) bool {
	for _, have := range Types(record) {
		for _, want := range types {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

// Filter returns the records having any of the given types.
func Filter(records []map[string]any, types ...string) []map[string]any {
	var out []map[string]any
	for _, r := range records {
		if IsType(r, types...) {
			out = append(out, r)
		}
	}
	return out
}
