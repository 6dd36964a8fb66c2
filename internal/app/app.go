// Package app assembles the card pipeline from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/cards"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/export"
	"github.com/joseph-ayodele/cardscan/internal/extract"
	"github.com/joseph-ayodele/cardscan/internal/ingest"
	"github.com/joseph-ayodele/cardscan/internal/llm/providers"
	"github.com/joseph-ayodele/cardscan/internal/ocr"
	"github.com/joseph-ayodele/cardscan/internal/pipeline"
	"github.com/joseph-ayodele/cardscan/internal/repository"
	"github.com/joseph-ayodele/cardscan/internal/session"
)

// App owns every long-lived component. Close releases the storage handle.
type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	KV        repository.KV
	Store     *cards.Store
	Sessions  *session.Store
	Processor *pipeline.Processor
	Exporter  *export.Service
	Ingestor  *ingest.Ingestor
}

// Options replaces pieces that tests or embedders want to control.
type Options struct {
	Engine ocr.Engine
	KV     repository.KV
	HTTP   *http.Client
}

func New(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = common.Default()
	}

	kv := opts.KV
	if kv == nil {
		var err error
		kv, err = repository.Open(ctx, repository.ConfigFrom(cfg.Storage), logger)
		if err != nil {
			return nil, err
		}
	}

	store := cards.NewStore(kv, logger)
	if err := store.Load(ctx); err != nil {
		repository.Close(kv, logger)
		return nil, err
	}

	sessions := session.New()
	if raw := cfg.AI.Provider; raw != "" {
		p, ok := constants.CanonicalizeProvider(raw)
		if !ok {
			repository.Close(kv, logger)
			return nil, fmt.Errorf("%w: unknown AI provider %q", common.ErrInvalidInput, raw)
		}
		sessions.SetProvider(session.DefaultID, p)
	}
	sessions.SetKey(session.DefaultID, cfg.AI.APIKey)

	client := opts.HTTP
	if client == nil {
		client = &http.Client{Timeout: cfg.AI.Timeout}
	}
	ai := extract.NewAIExtractor(
		providers.NewRegistry(providers.FromAppConfig(cfg.AI)),
		client,
		extract.AIConfig{Timeout: cfg.AI.Timeout, LenientOptional: true},
		logger,
	)
	coord := extract.NewCoordinator(ai, extract.KeyPolicy(cfg.AI.InvalidKeyPolicy), logger)

	engine := opts.Engine
	if engine == nil {
		var err error
		engine, err = ocr.NewEngine(ocr.Config{
			Engine:      cfg.OCR.Engine,
			Tesseract:   cfg.OCR.Tesseract,
			Language:    cfg.OCR.Language,
			TessdataDir: cfg.OCR.TessdataDir,
			PSM:         cfg.OCR.PSM,
		}, logger)
		if err != nil {
			repository.Close(kv, logger)
			return nil, err
		}
	}

	proc := pipeline.NewProcessor(pipeline.Config{
		Language:      cfg.OCR.Language,
		OCRTimeout:    cfg.OCR.Timeout,
		HeicConverter: cfg.OCR.HeicConverter,
	}, engine, coord, store, sessions, logger)

	a := &App{
		Config:    cfg,
		Logger:    logger,
		KV:        kv,
		Store:     store,
		Sessions:  sessions,
		Processor: proc,
		Exporter:  export.NewService(logger),
		Ingestor:  ingest.NewIngestor(ingest.ConfigFrom(cfg.Ingest), proc, store, logger),
	}
	logger.Info("app.ready",
		"storage", cfg.Storage.Driver,
		"ocr_engine", cfg.OCR.Engine,
		"provider", sessions.Get(session.DefaultID).Provider,
		"cards", store.Len(),
	)
	return a, nil
}

func (a *App) Close() {
	repository.Close(a.KV, a.Logger)
}
