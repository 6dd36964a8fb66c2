package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is one image waiting to be analysed.
type Job struct {
	ID          uuid.UUID
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

func NewJob(path string) Job {
	return Job{ID: uuid.New(), Path: path, SubmittedAt: time.Now()}
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Handler processes a single job. Errors are logged by the queue.
type Handler func(ctx context.Context, job Job) error
