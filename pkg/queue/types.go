// Package queue buffers publish requests for asynchronous and deferred
// dispatch. Backends cover in-process memory and Redis.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/kart-io/publishhub/pkg/publisher"
	"github.com/kart-io/publishhub/pkg/utils/idgen"
)

var (
	// ErrQueueFull is returned when the queue is at capacity.
	ErrQueueFull = errors.New("queue is full")

	// ErrQueueEmpty is returned when dequeuing from an empty queue.
	ErrQueueEmpty = errors.New("queue is empty")

	// ErrQueueClosed is returned when operating on a closed queue.
	ErrQueueClosed = errors.New("queue is closed")

	// ErrInvalidJob is returned when the job is nil or has no request.
	ErrInvalidJob = errors.New("invalid job")
)

// Job is one queued publish request.
type Job struct {
	ID          string             `json:"id"`
	Request     *publisher.Request `json:"request"`
	ScheduledAt *time.Time         `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// NewJob wraps a publish request into a queue job. A future ScheduledAt
// on the request defers the job.
func NewJob(req *publisher.Request) *Job {
	now := time.Now()
	if req.ID == "" {
		req.ID = idgen.RequestID()
	}
	job := &Job{
		ID:        idgen.Prefixed("job"),
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !req.ScheduledAt.IsZero() {
		at := req.ScheduledAt
		job.ScheduledAt = &at
	}
	return job
}

// DepthRecorder receives queue depth changes for metrics.
// *observability.Telemetry satisfies it.
type DepthRecorder interface {
	RecordQueueDepth(ctx context.Context, delta int64)
}

// Queue is the job buffer contract shared by all backends.
type Queue interface {
	// Enqueue adds a job. Jobs scheduled in the future stay invisible
	// until their time arrives.
	Enqueue(ctx context.Context, job *Job) error

	// Dequeue removes and returns the next ready job.
	Dequeue(ctx context.Context) (*Job, error)

	// Size returns the number of buffered jobs, deferred ones included.
	Size() int

	// Close releases the queue's resources.
	Close() error
}
