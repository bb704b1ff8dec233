package content

import (
	"encoding/json"
	"strings"
)

// jsonLDTitle returns the headline or name of the first structured-data
// node that carries one.
func jsonLDTitle(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return ""
	}
	return findTitle(payload)
}

func findTitle(payload any) string {
	switch t := payload.(type) {
	case map[string]any:
		for _, key := range []string{"headline", "name"} {
			if s, ok := t[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		if graph, ok := t["@graph"].([]any); ok {
			for _, item := range graph {
				if title := findTitle(item); title != "" {
					return title
				}
			}
		}
	case []any:
		for _, item := range t {
			if title := findTitle(item); title != "" {
				return title
			}
		}
	}
	return ""
}
