package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Path walks nested JSON objects along keys.
func Path(v any, keys ...string) (any, bool) {
	cur := v
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[k]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// FirstOf returns the first non-null value among the given aliases.
func FirstOf(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String renders a scalar JSON value as a trimmed string. Objects and
// arrays yield "".
func String(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// FirstString returns the first non-empty string among the aliases.
func FirstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := String(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// Bool coerces booleans, "true"/"yes"/"1" strings and non-zero numbers.
func Bool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1", "instock", "in_stock", "available":
			return true
		}
		return false
	default:
		return Number(v) != 0
	}
}

// Object returns v as a JSON object.
func Object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// Objects returns the object elements of a JSON array, dropping anything
// that is not an object.
func Objects(v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// stringFields are tried, in order, when a list holds objects instead of
// plain strings (image lists, badge lists...).
var stringFields = []string{"url", "src", "href", "contentUrl", "label", "name", "value", "text"}

// Strings flattens a string, a list of strings, or a list of objects
// carrying one of the usual text fields into a list of non-empty strings.
func Strings(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
		return nil
	case map[string]any:
		if s := FirstString(t, stringFields...); s != "" {
			return []string{s}
		}
		return nil
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, Strings(item)...)
		}
		return out
	case []string:
		var out []string
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Clone makes a shallow copy of a raw record for the passthrough field.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	dst := make(map[string]any, len(m))
	for k, v := range m {
		dst[k] = v
	}
	return dst
}
