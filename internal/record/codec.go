package record

import (
	"encoding/json"
	"strings"
)

// The vector index accepts only flat scalar fields, while records carry
// a nested metrics map and a hashtag list. The codec bridges the two
// shapes with a declarative per-field schema so the round-trip
// invariant unflatten(flatten(m)) == m is mechanically checkable.

// FieldKind classifies how a metadata field crosses the flat boundary.
type FieldKind int

const (
	// FieldScalar passes through unchanged.
	FieldScalar FieldKind = iota
	// FieldNested explodes a nested map into prefixed top-level fields.
	FieldNested
	// FieldList joins a string list into one comma-delimited field.
	FieldList
	// FieldJSON serializes any other non-scalar value to a JSON string.
	FieldJSON
)

const (
	nestedSeparator = "_"
	listSeparator   = ","
)

// schema maps known field names to their codec treatment. Unlisted
// fields are scalars; unlisted non-scalar values fall back to FieldJSON.
var schema = map[string]FieldKind{
	"metrics":  FieldNested,
	"hashtags": FieldList,
}

func kindOf(name string, value any) FieldKind {
	if kind, ok := schema[name]; ok {
		return kind
	}
	switch value.(type) {
	case map[string]any, []any, []string:
		return FieldJSON
	}
	return FieldScalar
}

// Flatten converts a nested metadata map to the flat shape the vector
// index stores.
func Flatten(meta map[string]any) map[string]any {
	flat := make(map[string]any, len(meta))
	for name, value := range meta {
		switch kindOf(name, value) {
		case FieldNested:
			nested, ok := value.(map[string]any)
			if !ok {
				flat[name] = jsonFallback(value)
				continue
			}
			for key, inner := range nested {
				flat[name+nestedSeparator+key] = inner
			}
		case FieldList:
			flat[name] = joinList(value)
		case FieldJSON:
			flat[name] = jsonFallback(value)
		default:
			flat[name] = value
		}
	}
	return flat
}

// Unflatten is the exact inverse of Flatten for ContentRecord-shaped
// maps: prefixed fields nest back under their parent, list fields are
// split on the delimiter, everything else passes through unchanged.
// An empty list field becomes an empty list, never [""]. JSON-fallback
// fields are not inverted; they stay strings, outside the round-trip
// contract.
func Unflatten(flat map[string]any) map[string]any {
	meta := make(map[string]any, len(flat))
	for name, value := range flat {
		if nested, key, ok := nestedField(name); ok {
			inner, _ := meta[nested].(map[string]any)
			if inner == nil {
				inner = make(map[string]any)
				meta[nested] = inner
			}
			inner[key] = value
			continue
		}
		if schema[name] == FieldList {
			meta[name] = splitList(asString(value))
			continue
		}
		meta[name] = value
	}
	return meta
}

func nestedField(name string) (parent, key string, ok bool) {
	for field, kind := range schema {
		if kind != FieldNested {
			continue
		}
		prefix := field + nestedSeparator
		if strings.HasPrefix(name, prefix) {
			return field, strings.TrimPrefix(name, prefix), true
		}
	}
	return "", "", false
}

func joinList(value any) string {
	switch list := value.(type) {
	case []string:
		return strings.Join(list, listSeparator)
	case []any:
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, asString(item))
		}
		return strings.Join(parts, listSeparator)
	}
	return asString(value)
}

func splitList(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, listSeparator)
}

func jsonFallback(value any) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "null"
	}
	return string(encoded)
}
