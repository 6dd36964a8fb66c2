package ocr

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls [][]string
	text  string
	tsv   string
	err   error
	onRun func(name string, args []string)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.onRun != nil {
		f.onRun(name, args)
	}
	if f.err != nil {
		return nil, []byte("boom"), f.err
	}
	if args[len(args)-1] == "tsv" {
		return []byte(f.tsv), nil, nil
	}
	return []byte(f.text), nil, nil
}

func TestTesseractRecognize(t *testing.T) {
	r := &fakeRunner{text: "John Smith\r\n\r\n\r\n\r\nAcme  Corp\t\n-----\njohn@acme.com\n"}
	var seenImage []byte
	r.onRun = func(_ string, args []string) {
		b, err := os.ReadFile(args[0])
		require.NoError(t, err)
		seenImage = b
	}

	eng := NewTesseract(Config{TessdataDir: "/td", PSM: 6}, nil).WithRunner(r)
	res, err := eng.Recognize(context.Background(), []byte("png-bytes"), "")
	require.NoError(t, err)

	assert.Equal(t, "John Smith\n\nAcme Corp\n\njohn@acme.com", res.Text)
	assert.Equal(t, "eng", res.Language)
	assert.Equal(t, "tesseract-cli", res.Method)
	assert.Equal(t, []byte("png-bytes"), seenImage)
	require.Len(t, r.calls, 1)
	assert.Equal(t, "tesseract", r.calls[0][0])
	assert.Equal(t, []string{"stdout", "-l", "eng", "--psm", "6", "--tessdata-dir", "/td"}, r.calls[0][2:])
	assert.Greater(t, res.Confidence, float32(0.2))
}

func TestTesseractRecognizeFailure(t *testing.T) {
	r := &fakeRunner{err: errors.New("exit status 1")}
	eng := NewTesseract(Config{}, nil).WithRunner(r)
	_, err := eng.Recognize(context.Background(), []byte("x"), "deu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tesseract")
	assert.Equal(t, "deu", r.calls[0][4])
}

func TestTesseractRejectsEmptyImage(t *testing.T) {
	eng := NewTesseract(Config{}, nil).WithRunner(&fakeRunner{})
	_, err := eng.Recognize(context.Background(), nil, "")
	require.Error(t, err)
}

func TestTesseractTSVConfidence(t *testing.T) {
	tsv := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t90\tJohn\n" +
		"5\t1\t1\t1\t1\t2\t0\t0\t10\t10\t70\tSmith\n" +
		"4\t1\t1\t1\t1\t0\t0\t0\t10\t10\t-1\t\n"
	assert.InDelta(t, 0.8, meanTSVConfidence(tsv), 0.0001)
	assert.Equal(t, float32(0), meanTSVConfidence("header only\n"))

	r := &fakeRunner{text: "Jane\njane@x.io\n", tsv: tsv}
	eng := NewTesseract(Config{EnableTSVConfidence: true}, nil).WithRunner(r)
	res, err := eng.Recognize(context.Background(), []byte("img"), "")
	require.NoError(t, err)
	require.Len(t, r.calls, 2)
	assert.Equal(t, "tsv", r.calls[1][len(r.calls[1])-1])
	assert.Greater(t, res.Confidence, float32(0.6))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"box noise", "Name\n=====\nTitle", "Name\n\nTitle"},
		{"keeps phone digits", "Tel 0 415 555 0100", "Tel 0 415 555 0100"},
		{"trailing spaces", "  a   \nb  ", "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNewEngine(t *testing.T) {
	eng, err := NewEngine(Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Tesseract{}, eng)

	_, err = NewEngine(Config{Engine: "paddle"}, nil)
	require.Error(t, err)
}

func TestConvertHEIC(t *testing.T) {
	r := &fakeRunner{}
	r.onRun = func(name string, args []string) {
		require.Equal(t, "magick", name)
		require.NoError(t, os.WriteFile(args[1], []byte("converted"), 0o600))
	}
	out, err := ConvertHEIC(context.Background(), r, "magick", []byte("heic"))
	require.NoError(t, err)
	assert.Equal(t, []byte("converted"), out)

	_, err = ConvertHEIC(context.Background(), r, "ffmpeg", []byte("heic"))
	require.Error(t, err)

	assert.True(t, IsHEIC(".HEIC"))
	assert.True(t, IsHEIC("heif"))
	assert.False(t, IsHEIC("png"))
}
