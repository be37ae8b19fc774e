package redact

import (
	"strings"
)

// Placeholder replaces the value of any sensitive key.
const Placeholder = "[REDACTED]"

// Keys whose lowercased name contains one of these fragments are masked.
var sensitiveFragments = []string{"password", "secret", "sessiontoken", "private_key", "privatekey"}

// Redactor masks secret values by key name. Values themselves are never
// pattern matched, so resource ids and ARNs pass through untouched.
type Redactor struct {
	fragments []string
}

func New(extra ...string) *Redactor {
	fragments := append([]string{}, sensitiveFragments...)
	for _, fragment := range extra {
		if fragment = strings.ToLower(strings.TrimSpace(fragment)); fragment != "" {
			fragments = append(fragments, fragment)
		}
	}
	return &Redactor{fragments: fragments}
}

func (r *Redactor) Sensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, fragment := range r.fragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

func (r *Redactor) RedactMap(input map[string]any) map[string]any {
	output := make(map[string]any, len(input))
	for k, v := range input {
		if r.Sensitive(k) {
			output[k] = Placeholder
			continue
		}
		output[k] = r.RedactValue(v)
	}
	return output
}

func (r *Redactor) RedactValue(input any) any {
	if r == nil {
		return input
	}
	switch v := input.(type) {
	case map[string]any:
		return r.RedactMap(v)
	case map[string]string:
		output := make(map[string]string, len(v))
		for k, value := range v {
			if r.Sensitive(k) {
				value = Placeholder
			}
			output[k] = value
		}
		return output
	case []map[string]any:
		redacted := make([]map[string]any, 0, len(v))
		for _, item := range v {
			redacted = append(redacted, r.RedactMap(item))
		}
		return redacted
	case []any:
		redacted := make([]any, 0, len(v))
		for _, item := range v {
			redacted = append(redacted, r.RedactValue(item))
		}
		return redacted
	default:
		return input
	}
}
