package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/joseph-ayodele/cardscan/internal/async"
	"github.com/joseph-ayodele/cardscan/internal/common"
)

// Scan walks root and returns the supported image files beneath it.
func Scan(root string, skipHidden bool) ([]string, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, fmt.Errorf("%w: root path is required", common.ErrInvalidInput)
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Scanned++
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk: %w", err)
	}
	sort.Strings(paths)
	return paths, stats, nil
}

// IngestDirectory analyses every image under root on a worker pool and adds
// each resulting card to the sink. Files with identical bytes are captured
// once; the rest are reported as deduplicated.
func (in *Ingestor) IngestDirectory(ctx context.Context, sessionID, root string) ([]FileResult, DirStats, error) {
	paths, stats, err := Scan(root, in.cfg.SkipHidden)
	if err != nil {
		return nil, stats, err
	}
	in.logger.Info("ingest.dir.start", "root", root, "matched", stats.Matched)

	var (
		mu      sync.Mutex
		results = make([]FileResult, 0, len(paths))
		seen    = map[string]string{}
	)
	record := func(r FileResult) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, r)
		switch {
		case r.Err != "":
			stats.Failed++
		case r.Deduplicated:
			stats.Deduplicated++
		default:
			stats.Succeeded++
		}
	}

	handle := func(jobCtx context.Context, job async.Job) error {
		res := FileResult{Path: job.Path}
		data, err := os.ReadFile(job.Path)
		if err != nil {
			res.Err = err.Error()
			record(res)
			return err
		}
		res.HashHex = hashHex(data)

		mu.Lock()
		first, dup := seen[res.HashHex]
		if !dup {
			seen[res.HashHex] = job.Path
		}
		mu.Unlock()
		if dup {
			in.logger.Info("ingest.file.duplicate", "path", job.Path, "same_as", first)
			res.Deduplicated = true
			record(res)
			return nil
		}

		c, err := in.pipe.Analyze(jobCtx, sessionID, data, filepath.Ext(job.Path))
		c.SourcePath = job.Path
		res.Capture = c
		if err == nil {
			err = in.sink.Add(jobCtx, c.Card)
		}
		if err != nil {
			res.Err = err.Error()
		}
		record(res)
		return err
	}

	q := async.NewProcessorQueue(handle, in.logger,
		async.WithWorkers(in.cfg.Workers),
		async.WithQueueSize(in.cfg.QueueSize),
		async.WithProcessTimeout(in.cfg.JobTimeout),
	)

	var enqueueErr error
	for _, p := range paths {
		job := async.NewJob(p)
		job.TraceID = common.RequestIDFromContext(ctx)
		if err := q.Enqueue(ctx, job); err != nil {
			enqueueErr = err
			break
		}
	}
	q.Shutdown(context.WithoutCancel(ctx))

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	in.logger.Info("ingest.dir.done",
		"root", root,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	if enqueueErr != nil && !errors.Is(enqueueErr, async.ErrQueueClosed) {
		return results, stats, enqueueErr
	}
	return results, stats, nil
}
