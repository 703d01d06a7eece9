package runplan

import (
	"fmt"
	"strings"
)

// Lenient coercion helpers for decoded document values. Mismatched types
// coerce to an empty default instead of failing, so a sloppy plan file
// degrades to missing values rather than a parse error.

func asString(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", value))
}

func asBool(value any, fallback bool) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	return fallback
}

func asStringList(value any) []string {
	var items []any
	switch v := value.(type) {
	case []any:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	default:
		return nil
	}

	var result []string
	for _, item := range items {
		if text := asString(item); text != "" {
			result = append(result, text)
		}
	}
	return result
}

func asActionList(value any) []string {
	var result []string
	for _, item := range asStringList(value) {
		result = append(result, NormalizeAction(item))
	}
	return result
}

func asStringMap(value any) map[string]string {
	result := map[string]string{}
	for key, item := range asTable(value) {
		k := strings.TrimSpace(key)
		v := asString(item)
		if k != "" && v != "" {
			result[k] = v
		}
	}
	return result
}

func asTable(value any) map[string]any {
	if table, ok := value.(map[string]any); ok {
		return table
	}
	return map[string]any{}
}

// asTableList handles both the []map[string]any shape the TOML decoder
// produces for arrays of tables and the []any shape of in-memory documents.
// Non-table entries are skipped.
func asTableList(value any) []map[string]any {
	switch v := value.(type) {
	case []map[string]any:
		return v
	case []any:
		var tables []map[string]any
		for _, item := range v {
			if table, ok := item.(map[string]any); ok {
				tables = append(tables, table)
			}
		}
		return tables
	}
	return nil
}

func asActionArgs(value any) map[string][]string {
	result := map[string][]string{}
	for key, item := range asTable(value) {
		token := NormalizeAction(key)
		if token == "" {
			continue
		}
		if sub, ok := item.(map[string]any); ok {
			result[token] = asStringList(sub["args"])
		}
	}
	return result
}
