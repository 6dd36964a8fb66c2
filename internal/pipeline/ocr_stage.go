package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/ocr"
	"github.com/joseph-ayodele/cardscan/internal/preprocess"
)

// LowConfidenceThreshold marks OCR output worth a manual review.
const LowConfidenceThreshold = 0.4

// OCRStage turns raw image bytes into text: decode, grayscale/contrast, recognise.
type OCRStage struct {
	engine ocr.Engine
	cfg    Config
	runner ocr.Runner
	logger *slog.Logger
}

func NewOCRStage(engine ocr.Engine, cfg Config, logger *slog.Logger) *OCRStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRStage{engine: engine, cfg: cfg, logger: logger}
}

// Run returns ErrAcquisition when the image cannot be decoded and ErrOCR when
// the engine fails.
func (s *OCRStage) Run(ctx context.Context, image []byte, ext string) (ocr.Result, error) {
	if len(image) == 0 {
		return ocr.Result{}, fmt.Errorf("%w: empty image", common.ErrAcquisition)
	}
	if ocr.IsHEIC(ext) {
		converted, err := ocr.ConvertHEIC(ctx, s.runner, s.cfg.HeicConverter, image)
		if err != nil {
			return ocr.Result{}, fmt.Errorf("%w: %v", common.ErrAcquisition, err)
		}
		image = converted
	}

	prepared, err := preprocess.PrepareForOCR(image)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("%w: %v", common.ErrAcquisition, err)
	}

	ctx, cancel := common.WithOptionalTimeout(ctx, s.cfg.OCRTimeout)
	defer cancel()
	res, err := s.engine.Recognize(ctx, prepared, s.cfg.Language)
	if err != nil {
		return res, fmt.Errorf("%w: %v", common.ErrOCR, err)
	}
	if res.Confidence > 0 && res.Confidence < LowConfidenceThreshold {
		s.logger.Warn("ocr.low_confidence", "confidence", res.Confidence, "chars", len(res.Text))
	}
	return res, nil
}
