// Package pipeline owns one capture end to end: image -> OCR -> extraction -> card store.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cardscan/internal/cards"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/extract"
	"github.com/joseph-ayodele/cardscan/internal/ocr"
	"github.com/joseph-ayodele/cardscan/internal/session"
)

type Config struct {
	Language      string        // OCR language, "" = engine default
	OCRTimeout    time.Duration // 0 = no extra deadline
	HeicConverter string        // see ocr.ConvertHEIC
}

// Processor is the application context: it wires the OCR engine, the
// extraction coordinator, the session credentials and the card store.
type Processor struct {
	logger   *slog.Logger
	cfg      Config
	ocr      *OCRStage
	parse    *ParseStage
	store    *cards.Store
	sessions *session.Store

	// gate allows a single interactive capture at a time
	gate sync.Mutex
}

func NewProcessor(cfg Config, engine ocr.Engine, coord *extract.Coordinator, store *cards.Store, sessions *session.Store, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:   logger,
		cfg:      cfg,
		ocr:      NewOCRStage(engine, cfg, logger),
		parse:    NewParseStage(coord, sessions, logger),
		store:    store,
		sessions: sessions,
	}
}

// WithRunner swaps the command runner used for HEIC conversion.
func (p *Processor) WithRunner(r ocr.Runner) *Processor {
	p.ocr.runner = r
	return p
}

func (p *Processor) Store() *cards.Store { return p.store }
func (p *Processor) Sessions() *session.Store { return p.sessions }

// Capture processes one image and prepends the resulting card to the store.
// A second capture while one is running fails fast with ErrCaptureInProgress.
// OCR failures are returned and nothing is stored.
func (p *Processor) Capture(ctx context.Context, sessionID string, image []byte, ext string) (entity.Capture, error) {
	if !p.gate.TryLock() {
		p.logger.Warn("capture.rejected.busy", "session_id", sessionID)
		return entity.Capture{}, common.ErrCaptureInProgress
	}
	defer p.gate.Unlock()

	c, err := p.Analyze(ctx, sessionID, image, ext)
	if err != nil {
		return c, err
	}
	if err := p.store.Add(ctx, c.Card); err != nil {
		return c, err
	}
	return c, nil
}

// CaptureFile reads path and captures it.
func (p *Processor) CaptureFile(ctx context.Context, sessionID, path string) (entity.Capture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.Capture{SourcePath: path}, fmt.Errorf("%w: %v", common.ErrAcquisition, err)
	}
	c, err := p.Capture(ctx, sessionID, data, filepath.Ext(path))
	c.SourcePath = path
	return c, err
}

// Analyze runs OCR and extraction without touching the store or the capture
// gate. Batch ingestion uses it from several workers at once.
func (p *Processor) Analyze(ctx context.Context, sessionID string, image []byte, ext string) (entity.Capture, error) {
	c := entity.Capture{ID: uuid.New(), StartedAt: time.Now()}
	p.logger.Info("capture.start", "capture_id", c.ID, "bytes", len(image), "ext", ext)

	res, err := p.ocr.Run(ctx, image, ext)
	if err != nil {
		p.logger.Error("processor.ocr.failed", "capture_id", c.ID, "error", err)
		c.Duration = time.Since(c.StartedAt)
		return c, err
	}
	c.OCRText = res.Text
	c.OCRConfidence = res.Confidence
	p.logger.Info("processor.ocr.ok",
		"capture_id", c.ID,
		"method", res.Method,
		"chars", len(res.Text),
		"confidence", res.Confidence,
	)

	out := p.parse.Run(ctx, sessionID, res.Text)
	c.Card = out.Card
	c.Source = out.Source
	c.Duration = time.Since(c.StartedAt)
	p.logger.Info("processor.parse.ok",
		"capture_id", c.ID,
		"source", out.Source,
		"elapsed_ms", c.Duration.Milliseconds(),
	)
	return c, nil
}
