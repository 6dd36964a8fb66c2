package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SanitizeCardJSON coerces near-miss completions into the card shape so they
// can still validate:
//   - null values become "" or []
//   - a bare string where a list is expected becomes a one-element list
//   - "phone" / "emails" synonyms are folded into "phones" / "email"
//
// It returns the rewritten document and the keys it touched.
func SanitizeCardJSON(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var touched []string
	rename := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			touched = append(touched, from+"->"+to)
		}
	}
	rename("phone", "phones")
	rename("emails", "email")

	for _, k := range []string{"name", "email"} {
		switch t := m[k].(type) {
		case nil:
			if _, ok := m[k]; ok {
				m[k] = ""
				touched = append(touched, k)
			}
		case []any:
			m[k] = firstString(t)
			touched = append(touched, k)
		case string:
			m[k] = strings.TrimSpace(t)
		}
	}

	for _, k := range []string{"phones", "other"} {
		switch t := m[k].(type) {
		case nil:
			if _, ok := m[k]; ok {
				m[k] = []any{}
				touched = append(touched, k)
			}
		case string:
			if s := strings.TrimSpace(t); s != "" {
				m[k] = []any{s}
			} else {
				m[k] = []any{}
			}
			touched = append(touched, k)
		case []any:
			out := make([]any, 0, len(t))
			for _, item := range t {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, s)
				}
			}
			if len(out) != len(t) {
				touched = append(touched, k)
			}
			m[k] = out
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, touched, nil
}

func firstString(items []any) string {
	for _, it := range items {
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
