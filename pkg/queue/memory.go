package queue

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kart-io/publishhub/pkg/logger"
)

// memoryQueue buffers jobs in a channel, with a min-heap holding deferred
// jobs until they are due. A background ticker promotes due jobs.
type memoryQueue struct {
	jobs     chan *Job
	deferred *delayHeap
	capacity int
	closed   atomic.Bool
	mu       sync.Mutex
	stopCh   chan struct{}
	wg       sync.WaitGroup
	logger   logger.Logger
}

// NewMemoryQueue creates an in-memory job queue with the given capacity.
func NewMemoryQueue(capacity int, log logger.Logger) Queue {
	if log == nil {
		log = logger.Discard
	}

	q := &memoryQueue{
		jobs:     make(chan *Job, capacity),
		deferred: &delayHeap{},
		capacity: capacity,
		stopCh:   make(chan struct{}),
		logger:   log,
	}
	heap.Init(q.deferred)

	q.wg.Add(1)
	go q.promoteDeferred()

	log.Info("memory queue created", "capacity", capacity)
	return q
}

// Enqueue adds a job, parking future-scheduled jobs on the delay heap.
func (q *memoryQueue) Enqueue(ctx context.Context, job *Job) error {
	if q.closed.Load() {
		return ErrQueueClosed
	}
	if job == nil || job.Request == nil {
		return ErrInvalidJob
	}

	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	if job.ScheduledAt != nil && job.ScheduledAt.After(now) {
		q.mu.Lock()
		heap.Push(q.deferred, job)
		q.mu.Unlock()
		q.logger.Debug("job deferred", "job_id", job.ID, "scheduled_at", job.ScheduledAt)
		return nil
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("job enqueued", "job_id", job.ID)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Dequeue removes and returns the next ready job.
func (q *memoryQueue) Dequeue(ctx context.Context) (*Job, error) {
	if q.closed.Load() {
		return nil, ErrQueueClosed
	}

	select {
	case job := <-q.jobs:
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return nil, ErrQueueEmpty
	}
}

// Size returns the number of buffered jobs, deferred ones included.
func (q *memoryQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs) + q.deferred.Len()
}

// Close stops the promoter and closes the queue. The jobs channel stays
// open so an Enqueue racing Close can never panic on a closed channel;
// the closed flag alone gates both sides.
func (q *memoryQueue) Close() error {
	if !q.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(q.stopCh)
	q.wg.Wait()
	q.logger.Info("memory queue closed")
	return nil
}

// promoteDeferred moves due deferred jobs onto the ready channel.
func (q *memoryQueue) promoteDeferred() {
	defer q.wg.Done()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-q.stopCh:
			return
		case <-ticker.C:
			q.promoteDue(time.Now())
		}
	}
}

func (q *memoryQueue) promoteDue(now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.deferred.Len() > 0 {
		job := (*q.deferred)[0]
		if job.ScheduledAt != nil && job.ScheduledAt.After(now) {
			break
		}

		heap.Pop(q.deferred)
		job.ScheduledAt = nil

		select {
		case q.jobs <- job:
			q.logger.Debug("deferred job ready", "job_id", job.ID)
		default:
			// Ready channel is full; repark and try next tick.
			job.ScheduledAt = &now
			heap.Push(q.deferred, job)
			return
		}
	}
}

// delayHeap orders deferred jobs by scheduled time, earliest first.
type delayHeap []*Job

func (h delayHeap) Len() int { return len(h) }

func (h delayHeap) Less(i, j int) bool {
	if h[i].ScheduledAt == nil {
		return true
	}
	if h[j].ScheduledAt == nil {
		return false
	}
	return h[i].ScheduledAt.Before(*h[j].ScheduledAt)
}

func (h delayHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *delayHeap) Push(x any) {
	*h = append(*h, x.(*Job))
}

func (h *delayHeap) Pop() any {
	old := *h
	n := len(old)
	job := old[n-1]
	*h = old[:n-1]
	return job
}
