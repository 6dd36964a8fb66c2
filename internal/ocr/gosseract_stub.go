//go:build !gosseract

package ocr

import (
	"errors"
	"log/slog"
)

func newGosseract(Config, *slog.Logger) (Engine, error) {
	return nil, errors.New("gosseract engine not compiled in: rebuild with -tags gosseract")
}
