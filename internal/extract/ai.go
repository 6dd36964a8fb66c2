package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/llm"
	"github.com/joseph-ayodele/cardscan/internal/session"
)

// ProviderSource resolves a provider name to its request/response contract.
type ProviderSource interface {
	Get(name constants.Provider) (llm.Provider, error)
}

type AIConfig struct {
	Timeout         time.Duration // 0 = rely on the caller's context only
	LenientOptional bool          // coerce near-miss completions before giving up
}

// AIExtractor sends the OCR text to the session's provider and decodes the
// completion into a card.
type AIExtractor struct {
	providers ProviderSource
	http      *http.Client
	cfg       AIConfig
	logger    *slog.Logger
}

var _ CardExtractor = (*AIExtractor)(nil)

func NewAIExtractor(providers ProviderSource, client *http.Client, cfg AIConfig, logger *slog.Logger) *AIExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{}
	}
	return &AIExtractor{providers: providers, http: client, cfg: cfg, logger: logger}
}

// Extract never returns a partial card: any failure yields (nil, reason).
func (a *AIExtractor) Extract(ctx context.Context, text string, cred session.Credential) (*entity.Card, error) {
	if !cred.HasKey() {
		return nil, errors.New("no api key configured")
	}
	p, err := a.providers.Get(cred.Provider)
	if err != nil {
		return nil, err
	}

	rid := uuid.New().String()
	ctx = common.WithRequestID(ctx, rid)
	ctx, cancel := common.WithOptionalTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	start := time.Now()

	a.logger.Info("llm.extract.start",
		"req_id", rid,
		"provider", p.Name(),
		"text_len", len(text),
		"key_len", len(cred.Key),
	)

	req, err := p.BuildRequest(ctx, llm.BuildCardPrompt(text), cred.Key)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	raw, _, err := llm.Do(ctx, a.http, req, a.logger)
	if err != nil {
		a.logger.Warn("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	completion, err := p.ParseCompletion(raw)
	if err != nil {
		a.logger.Warn("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
		)
		return nil, err
	}

	card, err := DecodeCard(completion, a.cfg.LenientOptional, a.logger)
	if err != nil {
		a.logger.Warn("llm.extract.unusable_completion",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	a.logger.Info("llm.extract.ok",
		"req_id", rid,
		"provider", p.Name(),
		"phones", len(card.Phones),
		"other", len(card.Other),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return card, nil
}

// DecodeCard strips code fences from a completion, validates it against the
// card schema and unmarshals it.
func DecodeCard(completion string, lenient bool, logger *slog.Logger) (*entity.Card, error) {
	if logger == nil {
		logger = slog.Default()
	}
	doc := []byte(llm.StripCodeFences(completion))
	schema := llm.CardSchema()

	if err := llm.ValidateJSONAgainstSchema(schema, doc); err != nil {
		if !lenient {
			return nil, fmt.Errorf("schema validation failed: %w", err)
		}
		cleaned, touched, sErr := llm.SanitizeCardJSON(doc)
		if sErr != nil {
			return nil, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := llm.ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			return nil, fmt.Errorf("schema validation failed: %w", vErr)
		}
		logger.Warn("llm.extract.lenient_sanitize_applied", "touched", touched)
		doc = cleaned
	}

	var card entity.Card
	if err := json.Unmarshal(doc, &card); err != nil {
		return nil, fmt.Errorf("unmarshal card: %w", err)
	}
	card.Normalize()
	return &card, nil
}
