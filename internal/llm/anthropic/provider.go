package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/llm"
)

const (
	DefaultBaseURL = "https://api.anthropic.com/v1"
	DefaultModel   = "claude-3-haiku-20240307"
	APIVersion     = "2023-06-01"
	MaxTokens      = 1024
)

type Config struct {
	BaseURL   string // default https://api.anthropic.com/v1
	Model     string
	MaxTokens int
}

// Provider talks to the Messages API.
type Provider struct {
	cfg Config
}

var _ llm.Provider = (*Provider)(nil)

func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = MaxTokens
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Provider{cfg: cfg}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *Provider) Name() constants.Provider { return constants.Anthropic }

func (p *Provider) BuildRequest(ctx context.Context, prompt, secret string) (*http.Request, error) {
	body := messagesRequest{
		Model:     p.cfg.Model,
		MaxTokens: p.cfg.MaxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	}
	return llm.NewJSONRequest(ctx, p.cfg.BaseURL+"/messages", body, map[string]string{
		"x-api-key":         secret,
		"anthropic-version": APIVersion,
	})
}

// ParseCompletion reads content[0].text.
func (p *Provider) ParseCompletion(body []byte) (string, error) {
	var r messagesResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}
	if len(r.Content) == 0 {
		return "", errors.New("no content in anthropic response")
	}
	return r.Content[0].Text, nil
}
