// Package preprocess prepares captured card images for OCR.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/disintegration/imaging"

	// decoders for formats a capture may arrive in
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Gain is the contrast multiplier applied after grayscale conversion.
const Gain = 1.2

// Process converts img to grayscale and boosts contrast, mutating the pixel
// buffer in place. Alpha is left untouched. The same pointer is returned.
//
// Each intermediate value is rounded to a byte with ties to even, the same way
// a clamped byte array stores it.
func Process(img *image.NRGBA) *image.NRGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			px := row[x*4 : x*4+4 : x*4+4]
			avg := (float64(px[0]) + float64(px[1]) + float64(px[2])) / 3
			gray := clampByte(avg)
			v := clampByte(float64(gray) * Gain)
			px[0], px[1], px[2] = v, v, v
		}
	}
	return img
}

func clampByte(f float64) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 255 {
		return 255
	}
	return uint8(math.RoundToEven(f))
}

// Decode reads an image in any registered format, applies EXIF orientation,
// and returns it as an NRGBA buffer ready for Process.
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n, nil
	}
	return imaging.Clone(img), nil
}

// EncodePNG writes img as a lossless PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PrepareForOCR decodes data, runs Process on it and re-encodes the result as PNG.
func PrepareForOCR(data []byte) ([]byte, error) {
	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	Process(img)
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
