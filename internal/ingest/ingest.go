// Package ingest feeds card images from folders into the capture pipeline,
// either as a one-shot batch or by watching for new files.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
)

// FileResult is the per-file ingest outcome.
type FileResult struct {
	Path         string
	Capture      entity.Capture
	Deduplicated bool
	HashHex      string
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Pipeline is the slice of pipeline.Processor the ingestor drives.
type Pipeline interface {
	Analyze(ctx context.Context, sessionID string, image []byte, ext string) (entity.Capture, error)
	CaptureFile(ctx context.Context, sessionID, path string) (entity.Capture, error)
}

// CardSink receives cards produced by a batch.
type CardSink interface {
	Add(ctx context.Context, card entity.Card) error
}

type Config struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
	Debounce   time.Duration
	SkipHidden bool
}

func ConfigFrom(c common.IngestConfig) Config {
	return Config{
		Workers:    c.Workers,
		QueueSize:  c.QueueSize,
		JobTimeout: c.JobTimeout,
		Debounce:   c.Debounce,
		SkipHidden: c.SkipHidden,
	}
}

type Ingestor struct {
	cfg    Config
	pipe   Pipeline
	sink   CardSink
	logger *slog.Logger
}

func NewIngestor(cfg Config, pipe Pipeline, sink CardSink, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{cfg: cfg, pipe: pipe, sink: sink, logger: logger}
}
