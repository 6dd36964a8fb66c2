// Package extract turns OCR text into a card: an LLM provider first, a
// deterministic regex extractor when the provider path yields nothing.
package extract

import (
	"context"

	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/session"
)

// CardExtractor is the AI tier. A nil card means "no usable result"; the
// error only explains why and is never fatal.
type CardExtractor interface {
	Extract(ctx context.Context, text string, cred session.Credential) (*entity.Card, error)
}

// Result is the coordinator's output: one card and the extractor that produced it.
type Result struct {
	Card   entity.Card
	Source entity.ExtractionSource
}
