package llm

// CardSchema is the JSON Schema a completion must satisfy to become a card.
// No key is required: missing fields default to empty values.
func CardSchema() map[string]any {
	strList := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"name":   map[string]any{"type": "string"},
			"phones": strList,
			"email":  map[string]any{"type": "string"},
			"other":  strList,
		},
	}
}
