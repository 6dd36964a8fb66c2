package llm

import (
	"strings"

	"github.com/joseph-ayodele/cardscan/constants"
)

// Validation is the outcome of a credential format check. It only drives a
// user-facing indicator; it never proves the key works.
type Validation struct {
	Valid   bool
	Message string
}

// ValidateCredential checks key against the known prefix conventions of provider.
func ValidateCredential(provider constants.Provider, key string) Validation {
	key = strings.TrimSpace(key)
	switch provider {
	case constants.OpenAI:
		if strings.HasPrefix(key, "sk-") {
			return Validation{true, "Valid OpenAI Key format"}
		}
		return Validation{false, "Invalid OpenAI Key (must start with sk-)"}
	case constants.Anthropic:
		if strings.HasPrefix(key, "sk-ant-") {
			return Validation{true, "Valid Anthropic Key format"}
		}
		return Validation{false, "Invalid Anthropic Key (must start with sk-ant-)"}
	case constants.Gemini:
		if len(key) > 20 && !strings.HasPrefix(key, "sk-") {
			return Validation{true, "Valid Gemini Key format"}
		}
		return Validation{false, "Invalid Gemini Key format"}
	default:
		return Validation{false, "Unknown provider"}
	}
}
