package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/llm"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash"
)

type Config struct {
	BaseURL string // default https://generativelanguage.googleapis.com/v1beta
	Model   string
}

// Provider calls generateContent with the key in the query string.
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
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Provider{cfg: cfg}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (p *Provider) Name() constants.Provider { return constants.Gemini }

func (p *Provider) BuildRequest(ctx context.Context, prompt, secret string) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?%s",
		p.cfg.BaseURL, url.PathEscape(p.cfg.Model), url.Values{"key": {secret}}.Encode())
	body := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	return llm.NewJSONRequest(ctx, endpoint, body, nil)
}

// ParseCompletion reads candidates[0].content.parts[0].text.
func (p *Provider) ParseCompletion(body []byte) (string, error) {
	var r generateResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no candidates in gemini response")
	}
	return r.Candidates[0].Content.Parts[0].Text, nil
}
