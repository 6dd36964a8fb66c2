package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/llm"
	"github.com/joseph-ayodele/cardscan/internal/session"
)

// KeyPolicy decides what happens when the configured key fails the format check.
type KeyPolicy string

const (
	// PolicyAttempt calls the provider anyway; the format check is advisory.
	PolicyAttempt KeyPolicy = "attempt"
	// PolicySkip goes straight to the regex extractor.
	PolicySkip KeyPolicy = "skip"
)

// Coordinator picks exactly one extractor per capture.
type Coordinator struct {
	ai     CardExtractor
	regex  *RegexExtractor
	policy KeyPolicy
	logger *slog.Logger
}

func NewCoordinator(ai CardExtractor, policy KeyPolicy, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if policy == "" {
		policy = PolicyAttempt
	}
	return &Coordinator{ai: ai, regex: NewRegexExtractor(), policy: policy, logger: logger}
}

// Run extracts a card from text. It never fails: any AI problem falls back to regex.
func (c *Coordinator) Run(ctx context.Context, text string, cred session.Credential) Result {
	if c.shouldTryAI(cred) {
		card, err := c.ai.Extract(ctx, text, cred)
		if card != nil {
			return Result{Card: *card, Source: entity.SourceAI}
		}
		c.logger.Warn("extract.ai.failed", "provider", cred.Provider, "error", err)
	}
	c.logger.Info("extract.fallback.regex", "text_len", len(text))
	return Result{Card: c.regex.Extract(text), Source: entity.SourceRegex}
}

func (c *Coordinator) shouldTryAI(cred session.Credential) bool {
	if c.ai == nil || !cred.HasKey() {
		return false
	}
	if c.policy == PolicySkip {
		if v := llm.ValidateCredential(cred.Provider, cred.Key); !v.Valid {
			c.logger.Info("extract.ai.skipped", "provider", cred.Provider, "reason", v.Message)
			return false
		}
	}
	return true
}
