// Package shape holds the small projection and schema helpers shared by the
// AWS service toolsets.
package shape

import (
	"sort"
	"time"
)

// Time renders an SDK timestamp as RFC 3339, or "" when unset.
func Time(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// SortedKeys returns the keys of m in lexical order so tag lists are stable.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Object builds a JSON schema object. Every tool accepts an optional region,
// so it is always added.
func Object(properties map[string]any, required ...string) map[string]any {
	props := make(map[string]any, len(properties)+1)
	for name, prop := range properties {
		props[name] = prop
	}
	props["region"] = String("AWS region; defaults to the environment or configured region.")
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func String(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func Integer(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func Boolean(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

func StringList(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}

// StringMap describes a flat string -> string object such as resource tags.
func StringMap(description string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": map[string]any{"type": "string"},
		"description":          description,
	}
}

func Enum(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "enum": values, "description": description}
}
