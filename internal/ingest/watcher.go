package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
)

type WatchConfig struct {
	Roots       []string      // directories to watch (recursive)
	InitialScan bool          // emit files already present
	Debounce    time.Duration // coalesce rapid write bursts
	SkipHidden  bool
}

// StartWatcher emits paths of images created or rewritten under the roots.
// Both channels close when ctx ends.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		logger.Error("watcher.start.failed", "error", "no roots provided")
		return nil, nil, errors.New("no roots provided")
	}
	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("watcher.create.failed", "error", err)
		return nil, nil, err
	}

	var initial []string
	addDir := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if cfg.SkipHidden && path != root && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && AllowedExt(filepath.Ext(path)) {
				initial = append(initial, path)
			}
			return nil
		})
	}
	for _, r := range cfg.Roots {
		if err := addDir(r); err != nil {
			logger.Error("watcher.add_root.failed", "root", r, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("watcher.close.failed", "error", err)
			}
		}()

		for _, p := range initial {
			select {
			case evCh <- p:
			case <-ctx.Done():
				return
			}
		}

		var timer *time.Timer
		pending := map[string]struct{}{}
		// the timer only signals; pending is owned by this goroutine
		flush := make(chan struct{}, 1)
		sendPending := func() {
			for p := range pending {
				delete(pending, p)
				select {
				case evCh <- p:
				case <-ctx.Done():
					return
				}
			}
		}
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-flush:
				sendPending()
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&fsnotify.Create == fsnotify.Create {
					tryAddDir(w, e.Name, logger)
				}
				if cfg.SkipHidden && IsHidden(e.Name) {
					continue
				}
				// Rename reports the old name; the new one arrives as Create.
				if !AllowedExt(filepath.Ext(e.Name)) || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				pending[e.Name] = struct{}{}
				if cfg.Debounce <= 0 {
					sendPending()
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(cfg.Debounce, func() {
					select {
					case flush <- struct{}{}:
					default:
					}
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

// tryAddDir watches newly created directories; plain files are ignored.
func tryAddDir(w *fsnotify.Watcher, path string, logger *slog.Logger) {
	isDir, err := statDir(path)
	if err != nil || !isDir {
		return
	}
	if err := w.Add(path); err != nil {
		logger.Warn("watcher.add_dir.failed", "path", path, "error", err)
	}
}

// Watch captures each image that appears under the roots until ctx ends.
// onCapture, when set, sees every outcome.
func (in *Ingestor) Watch(ctx context.Context, sessionID string, cfg WatchConfig, onCapture func(entity.Capture, error)) error {
	if cfg.Debounce == 0 {
		cfg.Debounce = in.cfg.Debounce
	}
	events, errs, err := StartWatcher(ctx, cfg, in.logger)
	if err != nil {
		return err
	}
	in.logger.Info("ingest.watch.start", "roots", cfg.Roots)

	for {
		select {
		case <-ctx.Done():
			in.logger.Info("ingest.watch.stop")
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			in.logger.Warn("ingest.watch.error", "error", err)
		case path, ok := <-events:
			if !ok {
				return nil
			}
			c, err := in.captureWithRetry(ctx, sessionID, path)
			if err != nil {
				in.logger.Error("ingest.watch.capture_failed", "path", path, "error", err)
			} else {
				in.logger.Info("ingest.watch.captured", "path", path, "name", c.Card.Name, "source", c.Source)
			}
			if onCapture != nil {
				onCapture(c, err)
			}
		}
	}
}

// captureWithRetry waits out a concurrent interactive capture.
func (in *Ingestor) captureWithRetry(ctx context.Context, sessionID, path string) (entity.Capture, error) {
	const backoff = 200 * time.Millisecond
	for {
		c, err := in.pipe.CaptureFile(ctx, sessionID, path)
		if !errors.Is(err, common.ErrCaptureInProgress) {
			return c, err
		}
		select {
		case <-ctx.Done():
			return c, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
