package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Tesseract runs the tesseract CLI on a temporary copy of the image.
type Tesseract struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseract(cfg Config, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tesseract{cfg: cfg.withDefaults(), runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner, mostly for tests.
func (t *Tesseract) WithRunner(r Runner) *Tesseract {
	t.runner = r
	return t
}

func (t *Tesseract) Recognize(ctx context.Context, image []byte, lang string) (Result, error) {
	start := time.Now()
	if lang == "" {
		lang = t.cfg.Language
	}
	if len(image) == 0 {
		return Result{}, fmt.Errorf("empty image")
	}

	tmpDir, err := os.MkdirTemp("", "cardscan-ocr-*")
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			t.logger.Warn("ocr.tmp.cleanup_failed", "dir", tmpDir, "error", err)
		}
	}()
	path := filepath.Join(tmpDir, "card.png")
	if err := os.WriteFile(path, image, 0o600); err != nil {
		return Result{}, fmt.Errorf("write temp image: %w", err)
	}

	t.logger.Debug("ocr.tesseract.start", "lang", lang, "bytes", len(image))
	txt, warn, err := t.tesseractOCR(ctx, path, lang)
	if err != nil {
		return Result{Method: "tesseract-cli", Warnings: warn}, err
	}
	txt = Normalize(txt)

	var ocrConf float32
	if t.cfg.EnableTSVConfidence {
		if c, err2 := t.tesseractTSVConfidence(ctx, path, lang); err2 == nil {
			ocrConf = c
		} else {
			warn = append(warn, err2.Error())
		}
	}

	return Result{
		Text:       txt,
		Language:   lang,
		Method:     "tesseract-cli",
		Duration:   time.Since(start),
		Warnings:   warn,
		Confidence: blendConfidence(ocrConf, heuristicConfidence(txt)),
	}, nil
}

func (t *Tesseract) baseArgs(path, lang string) []string {
	args := []string{path, "stdout", "-l", lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(t.cfg.OEM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

func (t *Tesseract) tesseractOCR(ctx context.Context, path, lang string) (string, []string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, t.baseArgs(path, lang)...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (t *Tesseract) tesseractTSVConfidence(ctx context.Context, path, lang string) (float32, error) {
	args := append(t.baseArgs(path, lang), "tsv")
	out, _, err := t.runner.Run(ctx, t.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w", err)
	}
	return meanTSVConfidence(string(out)), nil
}

func meanTSVConfidence(tsv string) float32 {
	var sum, n float64
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || len(ln) == 0 {
			continue
		} // header
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := strings.TrimSpace(cols[len(cols)-2])
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float32(sum / n / 100.0)
}
