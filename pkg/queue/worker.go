package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/publisher"
	"github.com/kart-io/publishhub/pkg/tracker"
)

// pollInterval is how long an idle worker waits before checking the
// queue again.
const pollInterval = 200 * time.Millisecond

// WorkerPool drains a job queue into the fan-out publisher. Each drained
// job is tracked from open to settle when a tracker is wired.
type WorkerPool struct {
	queue     Queue
	publisher *publisher.Publisher
	tracker   *tracker.Tracker
	depth     DepthRecorder
	workers   int
	logger    logger.Logger

	running   atomic.Bool
	processed atomic.Int64
	failed    atomic.Int64
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewWorkerPool creates a pool of workers over a queue. The tracker may
// be nil when lifecycle tracking is not wired.
func NewWorkerPool(q Queue, pub *publisher.Publisher, tr *tracker.Tracker, workers int, log logger.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = logger.Discard
	}
	return &WorkerPool{
		queue:     q,
		publisher: pub,
		tracker:   tr,
		workers:   workers,
		logger:    log,
		stopCh:    make(chan struct{}),
	}
}

// SetDepthRecorder wires the queue depth gauge. Call before Start.
func (p *WorkerPool) SetDepthRecorder(r DepthRecorder) {
	p.depth = r
}

// Start launches the workers. It fails when the pool is already running.
func (p *WorkerPool) Start(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return fmt.Errorf("worker pool already running")
	}

	p.logger.Info("worker pool starting", "workers", p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	return nil
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (p *WorkerPool) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.stopCh)
	p.wg.Wait()
	p.logger.Info("worker pool stopped",
		"processed", p.processed.Load(),
		"failed", p.failed.Load())
}

// Processed returns how many jobs the pool has completed.
func (p *WorkerPool) Processed() int64 { return p.processed.Load() }

// Failed returns how many jobs ended with no successful platform.
func (p *WorkerPool) Failed() int64 { return p.failed.Load() }

func (p *WorkerPool) run(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) {
				select {
				case <-p.stopCh:
					return
				case <-ctx.Done():
					return
				case <-time.After(pollInterval):
				}
				continue
			}
			if errors.Is(err, ErrQueueClosed) || errors.Is(err, context.Canceled) {
				return
			}
			p.logger.Error("dequeue failed", "worker", id, "error", err.Error())
			continue
		}

		if p.depth != nil {
			p.depth.RecordQueueDepth(ctx, -1)
		}
		p.process(ctx, id, job)
	}
}

func (p *WorkerPool) process(ctx context.Context, id int, job *Job) {
	p.logger.Debug("job picked up", "worker", id, "job_id", job.ID)

	var record *tracker.Record
	if p.tracker != nil {
		var err error
		record, err = p.tracker.Open(ctx, job.Request.ID, job.Request.TargetPlatforms)
		if err != nil {
			p.logger.Warn("tracker open failed", "job_id", job.ID, "error", err.Error())
		}
	}

	result, err := p.publisher.Submit(ctx, job.Request)
	if err != nil {
		p.failed.Add(1)
		p.logger.Error("job rejected", "worker", id, "job_id", job.ID, "error", err.Error())
		return
	}

	if record != nil {
		if err := p.tracker.Settle(ctx, record, result); err != nil {
			p.logger.Warn("tracker settle failed", "job_id", job.ID, "error", err.Error())
		}
	}

	p.processed.Add(1)
	if result.Succeeded == 0 {
		p.failed.Add(1)
	}
}
