// Package ocr turns a preprocessed card image into raw text.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Engine recognises text in an encoded image. An empty lang means the engine default.
type Engine interface {
	Recognize(ctx context.Context, image []byte, lang string) (Result, error)
}

type Result struct {
	Text       string
	Language   string
	Method     string // "tesseract-cli" | "gosseract"
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Config struct {
	Engine    string // "tesseract" (default) | "gosseract"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Language    string // default "eng"
	TessdataDir string

	EnableTSVConfidence bool

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

func (c Config) withDefaults() Config {
	if c.Engine == "" {
		c.Engine = "tesseract"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.Language == "" {
		c.Language = "eng"
	}
	return c
}

// NewEngine builds the engine selected by cfg.Engine.
func NewEngine(cfg Config, logger *slog.Logger) (Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	switch cfg.Engine {
	case "tesseract":
		return NewTesseract(cfg, logger), nil
	case "gosseract":
		return newGosseract(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
	}
}

func blendConfidence(ocrConf, heurConf float32) float32 {
	var conf float32
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	} else {
		conf = heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
