package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cardscan/internal/app"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/ocr"
	"github.com/joseph-ayodele/cardscan/internal/repository"
	"github.com/joseph-ayodele/cardscan/internal/server"
)

type textEngine struct{ text string }

func (e textEngine) Recognize(ctx context.Context, img []byte, lang string) (ocr.Result, error) {
	return ocr.Result{Text: e.text, Confidence: 0.7, Method: "fake"}, nil
}

type harness struct {
	kv  repository.KV
	dir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("CARDSCAN_CONFIG", "")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("AI_PROVIDER", "")
	return &harness{kv: repository.NewMemory(), dir: t.TempDir()}
}

// run executes the command tree against a shared in-memory store.
func (h *harness) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	st := &state{
		newApp: func(ctx context.Context, cfg *common.Config) (*app.App, error) {
			return app.New(ctx, cfg, nil, app.Options{
				KV:     h.kv,
				Engine: textEngine{text: "Grace Hopper\ngrace@navy.mil\n+1 202 555 0143\nUS Navy"},
			})
		},
	}
	cmd := newRootCmd(st)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
}

func (h *harness) cards(t *testing.T) []entity.Card {
	t.Helper()
	out, _, err := h.run(t, "", "list", "--json")
	require.NoError(t, err)
	var list []entity.Card
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	return list
}

func TestScanListEditDelete(t *testing.T) {
	h := newHarness(t)
	img := filepath.Join(h.dir, "card.png")
	writePNG(t, img)

	out, _, err := h.run(t, "", "scan", img)
	require.NoError(t, err)
	assert.Contains(t, out, "(regex)")
	assert.Contains(t, out, "Grace Hopper")

	out, _, err = h.run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "grace@navy.mil")

	_, _, err = h.run(t, "", "edit", "0", "other", "Admiral; COBOL")
	require.NoError(t, err)
	assert.Equal(t, []string{"Admiral", "COBOL"}, h.cards(t)[0].Other)

	out, _, err = h.run(t, "n\n", "delete", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "kept")
	assert.Len(t, h.cards(t), 1)

	_, _, err = h.run(t, "", "delete", "0", "--yes")
	require.NoError(t, err)
	assert.Empty(t, h.cards(t))
}

func TestEditRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run(t, "", "edit", "zero", "name", "x")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, err = h.run(t, "", "edit", "0", "title", "x")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, err = h.run(t, "", "edit", "0", "name", "x")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestScanReportsUnreadableFile(t *testing.T) {
	h := newHarness(t)
	_, errOut, err := h.run(t, "", "scan", filepath.Join(h.dir, "missing.png"))
	assert.Error(t, err)
	assert.Contains(t, errOut, "missing.png")
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run(t, "", "export", "--format", "csv", "--out", "-")
	assert.ErrorIs(t, err, common.ErrNothingToExport)

	img := filepath.Join(h.dir, "card.png")
	writePNG(t, img)
	_, _, err = h.run(t, "", "scan", img)
	require.NoError(t, err)

	out, _, err := h.run(t, "", "export", "--format", "csv", "--out", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Name,Phone(s),Email,Other\n\"Grace Hopper\""))

	target := filepath.Join(h.dir, "contacts.xlsx")
	_, _, err = h.run(t, "", "export", "--out", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(data[:2]))
}

func TestBatch(t *testing.T) {
	h := newHarness(t)
	writePNG(t, filepath.Join(h.dir, "a.png"))
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "notes.txt"), []byte("x"), 0o644))

	out, _, err := h.run(t, "", "batch", h.dir)
	require.NoError(t, err)
	assert.Contains(t, out, "matched=1 ok=1 duplicates=0 failed=0")
	assert.Len(t, h.cards(t), 1)

	_, _, err = h.run(t, "", "batch", h.dir, "--remote", "localhost:1")
	assert.Error(t, err)
}

func TestKeyCheck(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run(t, "", "key", "check")
	require.NoError(t, err)
	assert.Equal(t, "✗ Invalid OpenAI Key (must start with sk-)\n", out)

	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("AI_API_KEY", "AIzaSyA-abcdefghijklmnopqrstu")
	out, _, err = h.run(t, "", "key", "check")
	require.NoError(t, err)
	assert.Equal(t, "✓ Valid Gemini Key format\n", out)

	_, _, err = h.run(t, "", "key", "set", "sk-1")
	assert.ErrorIs(t, err, errKeyNeedsRemote)
}

// startDaemon serves a fresh app over loopback TCP for --remote runs.
func startDaemon(t *testing.T) (string, *app.App) {
	t.Helper()
	a, err := app.New(context.Background(), common.Default(), nil, app.Options{
		KV:     repository.NewMemory(),
		Engine: textEngine{text: "x"},
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	gs, _ := server.New(server.NewCardService(a.Processor, a.Exporter, nil), nil)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)
	return lis.Addr().String(), a
}

func TestKeyClearEndsRemoteSession(t *testing.T) {
	h := newHarness(t)
	addr, a := startDaemon(t)

	out, _, err := h.run(t, "", "key", "set", "sk-alice", "--provider", "openai", "--remote", addr, "--session", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Valid OpenAI Key format\n", out)
	require.True(t, a.Sessions.Get("alice").HasKey())
	before := a.Sessions.Len()

	_, _, err = h.run(t, "", "key", "clear", "--end", "--remote", addr, "--session", "alice")
	require.NoError(t, err)
	assert.False(t, a.Sessions.Get("alice").HasKey())
	assert.Equal(t, before-1, a.Sessions.Len())

	_, _, err = h.run(t, "", "key", "clear", "--end")
	assert.ErrorIs(t, err, errKeyNeedsRemote)
}
