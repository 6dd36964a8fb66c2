package extract

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/llm/gemini"
	"github.com/joseph-ayodele/cardscan/internal/llm/providers"
	"github.com/joseph-ayodele/cardscan/internal/session"
)

type stubAI struct {
	card  *entity.Card
	err   error
	calls int
}

func (s *stubAI) Extract(context.Context, string, session.Credential) (*entity.Card, error) {
	s.calls++
	return s.card, s.err
}

func TestCoordinatorPrefersAI(t *testing.T) {
	aiCard := &entity.Card{Name: "From AI", Phones: []string{}, Email: "", Other: []string{}}
	ai := &stubAI{card: aiCard}
	c := NewCoordinator(ai, PolicyAttempt, nil)

	res := c.Run(context.Background(), sampleText, session.Credential{Provider: constants.OpenAI, Key: "sk-1"})
	assert.Equal(t, entity.SourceAI, res.Source)
	assert.Equal(t, *aiCard, res.Card)
	assert.Equal(t, 1, ai.calls)
}

func TestCoordinatorFallsBackToRegex(t *testing.T) {
	ai := &stubAI{err: errors.New("boom")}
	c := NewCoordinator(ai, PolicyAttempt, nil)

	res := c.Run(context.Background(), sampleText, session.Credential{Provider: constants.OpenAI, Key: "sk-1"})
	assert.Equal(t, entity.SourceRegex, res.Source)
	assert.Equal(t, "John Smith", res.Card.Name)
	assert.Equal(t, 1, ai.calls)
}

func TestCoordinatorWithoutKeySkipsAI(t *testing.T) {
	ai := &stubAI{card: &entity.Card{Name: "x"}}
	c := NewCoordinator(ai, PolicyAttempt, nil)

	res := c.Run(context.Background(), sampleText, session.Credential{Provider: constants.OpenAI, Key: "  "})
	assert.Equal(t, entity.SourceRegex, res.Source)
	assert.Equal(t, 0, ai.calls)
}

func TestCoordinatorKeyPolicy(t *testing.T) {
	bad := session.Credential{Provider: constants.Anthropic, Key: "sk-not-anthropic"}

	ai := &stubAI{card: &entity.Card{Name: "AI"}}
	res := NewCoordinator(ai, PolicyAttempt, nil).Run(context.Background(), sampleText, bad)
	assert.Equal(t, entity.SourceAI, res.Source)
	assert.Equal(t, 1, ai.calls)

	ai = &stubAI{card: &entity.Card{Name: "AI"}}
	res = NewCoordinator(ai, PolicySkip, nil).Run(context.Background(), sampleText, bad)
	assert.Equal(t, entity.SourceRegex, res.Source)
	assert.Equal(t, 0, ai.calls)
}

func TestCoordinatorNilAI(t *testing.T) {
	res := NewCoordinator(nil, "", nil).Run(context.Background(), sampleText, session.Credential{Key: "sk-1"})
	assert.Equal(t, entity.SourceRegex, res.Source)
}

func TestCoordinatorNeverLogsQueryKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/v1beta"
	srv.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := providers.NewRegistry(providers.Config{Gemini: gemini.Config{BaseURL: base}})
	ai := NewAIExtractor(reg, nil, AIConfig{}, logger)
	c := NewCoordinator(ai, PolicyAttempt, logger)

	const key = "AIzaSECRETSECRETSECRET123456"
	res := c.Run(context.Background(), sampleText, session.Credential{Provider: constants.Gemini, Key: key})
	assert.Equal(t, entity.SourceRegex, res.Source)
	assert.Contains(t, logs.String(), "extract.ai.failed")
	assert.NotContains(t, logs.String(), key)
}
