package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/llm"
)

var _ llm.Provider = (*Provider)(nil)

// chatRequest mirrors the chat/completions body. go-openai's request type drops
// temperature when it is zero, so the body is built here.
type chatRequest struct {
	Model       string                           `json:"model"`
	Messages    []goopenai.ChatCompletionMessage `json:"messages"`
	Temperature float32                          `json:"temperature"`
}

func (p *Provider) Name() constants.Provider { return constants.OpenAI }

func (p *Provider) BuildRequest(ctx context.Context, prompt, secret string) (*http.Request, error) {
	body := chatRequest{
		Model: p.cfg.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: p.cfg.Temperature,
	}
	return llm.NewJSONRequest(ctx, p.cfg.BaseURL+"/chat/completions", body, map[string]string{
		"Authorization": "Bearer " + secret,
	})
}

// ParseCompletion reads choices[0].message.content.
func (p *Provider) ParseCompletion(body []byte) (string, error) {
	var cc goopenai.ChatCompletionResponse
	if err := json.Unmarshal(body, &cc); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", errors.New("no choices in openai response")
	}
	return cc.Choices[0].Message.Content, nil
}
