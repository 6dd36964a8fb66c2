package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
)

type fakePipe struct {
	mu       sync.Mutex
	analyzed []string
	captured []string
	busy     int
}

func (f *fakePipe) Analyze(ctx context.Context, sessionID string, image []byte, ext string) (entity.Capture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed = append(f.analyzed, string(image))
	if string(image) == "broken" {
		return entity.Capture{}, common.ErrOCR
	}
	return entity.Capture{Card: entity.Card{Name: string(image), Email: "N/A", Phones: []string{}, Other: []string{}}}, nil
}

func (f *fakePipe) CaptureFile(ctx context.Context, sessionID, path string) (entity.Capture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy > 0 {
		f.busy--
		return entity.Capture{}, common.ErrCaptureInProgress
	}
	f.captured = append(f.captured, path)
	return entity.Capture{SourcePath: path}, nil
}

type sliceSink struct {
	mu    sync.Mutex
	cards []entity.Card
}

func (s *sliceSink) Add(ctx context.Context, c entity.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = append(s.cards, c)
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.png"), "a")
	writeFile(t, filepath.Join(root, "b.JPG"), "b")
	writeFile(t, filepath.Join(root, "notes.txt"), "x")
	writeFile(t, filepath.Join(root, "sub", "c.webp"), "c")
	writeFile(t, filepath.Join(root, ".hidden", "d.png"), "d")
	writeFile(t, filepath.Join(root, ".e.png"), "e")

	paths, stats, err := Scan(root, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.png"),
		filepath.Join(root, "b.JPG"),
		filepath.Join(root, "sub", "c.webp"),
	}, paths)
	assert.Equal(t, uint32(4), stats.Scanned)
	assert.Equal(t, uint32(3), stats.Matched)

	paths, _, err = Scan(root, false)
	require.NoError(t, err)
	assert.Len(t, paths, 5)
}

func TestScanRejectsEmptyRoot(t *testing.T) {
	_, _, err := Scan("  ", true)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, err = Scan(filepath.Join(t.TempDir(), "missing"), true)
	assert.Error(t, err)
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "1.png"), "alice")
	writeFile(t, filepath.Join(root, "2.png"), "bob")
	writeFile(t, filepath.Join(root, "3.png"), "alice")
	writeFile(t, filepath.Join(root, "4.png"), "broken")

	pipe := &fakePipe{}
	sink := &sliceSink{}
	in := NewIngestor(Config{Workers: 2, QueueSize: 1, JobTimeout: time.Second, SkipHidden: true}, pipe, sink, nil)

	results, stats, err := in.IngestDirectory(context.Background(), "default", root)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, uint32(2), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Equal(t, uint32(1), stats.Failed)
	assert.Len(t, sink.cards, 2)
	assert.Len(t, pipe.analyzed, 3)

	assert.Equal(t, filepath.Join(root, "4.png"), results[3].Path)
	assert.NotEmpty(t, results[3].Err)
	assert.Equal(t, results[0].HashHex, hashHex([]byte("alice")))
	assert.True(t, results[0].Deduplicated || results[2].Deduplicated)
	assert.False(t, results[0].Deduplicated && results[2].Deduplicated)
}

func TestWatchCapturesNewFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "existing.png"), "x")

	pipe := &fakePipe{busy: 1}
	in := NewIngestor(Config{}, pipe, &sliceSink{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- in.Watch(ctx, "default", WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 20 * time.Millisecond}, func(c entity.Capture, err error) {
			if err == nil {
				got <- c.SourcePath
			}
		})
	}()

	select {
	case p := <-got:
		assert.Equal(t, filepath.Join(root, "existing.png"), p)
	case <-ctx.Done():
		t.Fatal("initial scan not captured")
	}

	writeFile(t, filepath.Join(root, "new.png"), "y")
	writeFile(t, filepath.Join(root, "ignored.txt"), "z")
	select {
	case p := <-got:
		assert.Equal(t, filepath.Join(root, "new.png"), p)
	case <-ctx.Done():
		t.Fatal("new file not captured")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestStartWatcherNeedsRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	assert.Error(t, err)
}
