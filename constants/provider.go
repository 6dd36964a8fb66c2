package constants

import (
	"strings"
)

// Provider names an LLM vendor the AI extractor can call.
type Provider string

const (
	OpenAI    Provider = "openai"
	Anthropic Provider = "anthropic"
	Gemini    Provider = "gemini"
)

// DefaultProvider is used when no provider was selected for the session.
const DefaultProvider = OpenAI

var allProviders = []Provider{
	OpenAI,
	Anthropic,
	Gemini,
}

func Providers() []Provider {
	out := make([]Provider, len(allProviders))
	copy(out, allProviders)
	return out
}

func ProvidersAsStringSlice() []string {
	result := make([]string, len(allProviders))
	for i, p := range allProviders {
		result[i] = string(p)
	}
	return result
}

// CanonicalizeProvider maps user input (including a few vendor aliases) to a Provider.
func CanonicalizeProvider(input string) (Provider, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return DefaultProvider, false
	}

	synonyms := map[string]Provider{
		"gpt":     OpenAI,
		"chatgpt": OpenAI,
		"claude":  Anthropic,
		"google":  Gemini,
	}
	if p, ok := synonyms[normalized]; ok {
		return p, true
	}
	for _, p := range allProviders {
		if normalized == string(p) {
			return p, true
		}
	}
	return DefaultProvider, false
}
