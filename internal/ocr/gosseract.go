//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// Gosseract recognises text in-process through the libtesseract binding.
type Gosseract struct {
	cfg    Config
	logger *slog.Logger
}

func newGosseract(cfg Config, logger *slog.Logger) (Engine, error) {
	return &Gosseract{cfg: cfg, logger: logger}, nil
}

func (g *Gosseract) Recognize(ctx context.Context, image []byte, lang string) (Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if lang == "" {
		lang = g.cfg.Language
	}

	client := gosseract.NewClient()
	defer func() {
		if err := client.Close(); err != nil {
			g.logger.Warn("ocr.gosseract.close_failed", "error", err)
		}
	}()
	if g.cfg.TessdataDir != "" {
		client.TessdataPrefix = g.cfg.TessdataDir
	}
	if err := client.SetLanguage(lang); err != nil {
		return Result{}, fmt.Errorf("gosseract language: %w", err)
	}
	if g.cfg.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(g.cfg.PSM)); err != nil {
			return Result{}, fmt.Errorf("gosseract psm: %w", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return Result{}, fmt.Errorf("gosseract image: %w", err)
	}
	txt, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("gosseract: %w", err)
	}
	txt = Normalize(txt)

	var ocrConf float32
	if g.cfg.EnableTSVConfidence {
		if boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD); err == nil && len(boxes) > 0 {
			var sum float64
			for _, b := range boxes {
				sum += b.Confidence
			}
			ocrConf = float32(sum / float64(len(boxes)) / 100.0)
		}
	}

	return Result{
		Text:       txt,
		Language:   lang,
		Method:     "gosseract",
		Duration:   time.Since(start),
		Confidence: blendConfidence(ocrConf, heuristicConfidence(txt)),
	}, nil
}
