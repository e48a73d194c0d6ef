package qa

import (
	"fmt"
	"strings"

	"github.com/compozy/hybridqa/engine/knowledge"
	"github.com/tidwall/gjson"
)

// tableCitation names a table when any of its patterns occurs in the query.
type tableCitation struct {
	name     string
	patterns []string
}

var tableCitations = []tableCitation{
	{name: "Orders", patterns: []string{"from orders", "join orders"}},
	{name: "Order Details", patterns: []string{"order_items", `"order details"`}},
	{name: "Products", patterns: []string{"from products", "join products"}},
	{name: "Customers", patterns: []string{"from customers", "join customers"}},
	{name: "Categories", patterns: []string{"categories"}},
}

// TableCitations lists the tables a query references.
func TableCitations(query string) []string {
	if query == "" {
		return nil
	}
	lower := strings.ToLower(query)
	var out []string
	for _, tc := range tableCitations {
		for _, p := range tc.patterns {
			if strings.Contains(lower, p) {
				out = append(out, tc.name)
				break
			}
		}
	}
	return out
}

// ResolveCitations merges chunk ids, table names and the synthesizer's
// citations, keeping the first occurrence of each.
func ResolveCitations(docs []knowledge.RetrievedResult, query string, asserted any) []string {
	citations := make([]string, 0, len(docs)+4)
	for _, d := range docs {
		citations = append(citations, d.Chunk.ID)
	}
	citations = append(citations, TableCitations(query)...)
	citations = append(citations, flattenCitations(asserted)...)
	return dedupe(citations)
}

// flattenCitations accepts a list, a string, or a string that encodes a
// list. Encoded lists are unwrapped one level; unreadable ones stay as is.
func flattenCitations(v any) []string {
	switch c := v.(type) {
	case nil:
		return nil
	case string:
		return unwrapEncoded(c)
	case []string:
		var out []string
		for _, s := range c {
			out = append(out, unwrapEncoded(s)...)
		}
		return out
	case []any:
		var out []string
		for _, item := range c {
			switch s := item.(type) {
			case nil:
			case string:
				out = append(out, unwrapEncoded(s)...)
			default:
				out = append(out, fmt.Sprint(s))
			}
		}
		return out
	default:
		return []string{fmt.Sprint(c)}
	}
}

func unwrapEncoded(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "[") {
		return []string{s}
	}
	normalized := strings.ReplaceAll(s, "'", `"`)
	parsed := gjson.Parse(normalized)
	if !gjson.Valid(normalized) || !parsed.IsArray() {
		return []string{s}
	}
	var out []string
	for _, item := range parsed.Array() {
		if item.Type == gjson.Null {
			continue
		}
		out = append(out, item.String())
	}
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
