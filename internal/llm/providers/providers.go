// Package providers resolves a provider name to its llm.Provider implementation.
package providers

import (
	"fmt"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/llm"
	"github.com/joseph-ayodele/cardscan/internal/llm/anthropic"
	"github.com/joseph-ayodele/cardscan/internal/llm/gemini"
	"github.com/joseph-ayodele/cardscan/internal/llm/openai"
)

type Config struct {
	OpenAI    openai.Config
	Anthropic anthropic.Config
	Gemini    gemini.Config
}

// FromAppConfig maps the AI section of the application config.
func FromAppConfig(c common.AIConfig) Config {
	return Config{
		OpenAI:    openai.Config{BaseURL: c.OpenAIBaseURL, Model: c.OpenAIModel},
		Anthropic: anthropic.Config{BaseURL: c.AnthropicBaseURL, Model: c.AnthropicModel},
		Gemini:    gemini.Config{BaseURL: c.GeminiBaseURL, Model: c.GeminiModel},
	}
}

// Registry holds one Provider per vendor.
type Registry struct {
	byName map[constants.Provider]llm.Provider
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{byName: map[constants.Provider]llm.Provider{
		constants.OpenAI:    openai.New(cfg.OpenAI),
		constants.Anthropic: anthropic.New(cfg.Anthropic),
		constants.Gemini:    gemini.New(cfg.Gemini),
	}}
}

// Get returns the provider registered under name.
func (r *Registry) Get(name constants.Provider) (llm.Provider, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", common.ErrInvalidInput, name)
	}
	return p, nil
}
