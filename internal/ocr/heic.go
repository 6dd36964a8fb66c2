package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsHEIC reports whether ext names a HEIC/HEIF photo, the default format of many phone cameras.
func IsHEIC(ext string) bool {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "heic", "heif":
		return true
	}
	return false
}

// ConvertHEIC converts a HEIC/HEIF image to PNG bytes using an external converter.
// converter: "heif-convert" | "magick" | "sips"
func ConvertHEIC(ctx context.Context, r Runner, converter string, data []byte) ([]byte, error) {
	if r == nil {
		r = execRunner{}
	}
	tmpDir, err := os.MkdirTemp("", "cardscan-heic-*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()
	in := filepath.Join(tmpDir, "card.heic")
	out := filepath.Join(tmpDir, "card.png")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, err
	}

	var errb []byte
	switch converter {
	case "heif-convert":
		_, errb, err = r.Run(ctx, "heif-convert", in, out)
	case "magick":
		_, errb, err = r.Run(ctx, "magick", in, out)
	case "sips":
		_, errb, err = r.Run(ctx, "sips", "-s", "format", "png", in, "--out", out)
	default:
		return nil, fmt.Errorf("HEIC not supported: set ocr converter to one of: heif-convert | magick | sips")
	}
	if err != nil {
		return nil, fmt.Errorf("%s convert failed: %w (%s)", converter, err, truncate(strings.TrimSpace(string(errb)), 512))
	}

	png, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("HEIC conversion produced no output: %w", err)
	}
	return png, nil
}
