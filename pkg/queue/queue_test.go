package queue

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/errors"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/publisher"
	"github.com/kart-io/publishhub/pkg/tracker"
)

func testRequest(platforms ...string) *publisher.Request {
	creds := make(map[string]platform.Credential, len(platforms))
	for _, name := range platforms {
		creds[name] = platform.Credential{AccessToken: "token"}
	}
	return &publisher.Request{
		Text:            "queued post",
		PostType:        content.PostTypePost,
		TargetPlatforms: platforms,
		Credentials:     creds,
	}
}

func TestMemoryQueueEnqueueDequeue(t *testing.T) {
	q := NewMemoryQueue(10, nil)
	defer q.Close()
	ctx := context.Background()

	job := NewJob(testRequest("twitter"))
	require.NoError(t, q.Enqueue(ctx, job))
	assert.Equal(t, 1, q.Size())

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "queued post", got.Request.Text)

	_, err = q.Dequeue(ctx)
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestMemoryQueueRejectsInvalidJobs(t *testing.T) {
	q := NewMemoryQueue(10, nil)
	defer q.Close()
	ctx := context.Background()

	assert.ErrorIs(t, q.Enqueue(ctx, nil), ErrInvalidJob)
	assert.ErrorIs(t, q.Enqueue(ctx, &Job{ID: "no-request"}), ErrInvalidJob)
}

func TestMemoryQueueCapacity(t *testing.T) {
	q := NewMemoryQueue(1, nil)
	defer q.Close()
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, NewJob(testRequest("twitter"))))
	assert.ErrorIs(t, q.Enqueue(ctx, NewJob(testRequest("mastodon"))), ErrQueueFull)
}

func TestMemoryQueueDefersScheduledJobs(t *testing.T) {
	q := NewMemoryQueue(10, nil)
	defer q.Close()
	ctx := context.Background()

	req := testRequest("twitter")
	req.ScheduledAt = time.Now().Add(150 * time.Millisecond)
	require.NoError(t, q.Enqueue(ctx, NewJob(req)))

	// Not visible before its time.
	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, ErrQueueEmpty)
	assert.Equal(t, 1, q.Size())

	// Becomes visible after the schedule passes.
	require.Eventually(t, func() bool {
		job, err := q.Dequeue(ctx)
		return err == nil && job.Request.TargetPlatforms[0] == "twitter"
	}, 2*time.Second, 50*time.Millisecond)
}

func TestMemoryQueueClosed(t *testing.T) {
	q := NewMemoryQueue(10, nil)
	require.NoError(t, q.Close())
	ctx := context.Background()

	assert.ErrorIs(t, q.Enqueue(ctx, NewJob(testRequest("twitter"))), ErrQueueClosed)
	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, ErrQueueClosed)
	// Closing twice is a no-op.
	require.NoError(t, q.Close())
}

func TestMemoryQueueEnqueueDuringClose(t *testing.T) {
	q := NewMemoryQueue(4, nil)
	ctx := context.Background()

	unexpected := make(chan error, 64)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 50; j++ {
				err := q.Enqueue(ctx, NewJob(testRequest("twitter")))
				if stderrors.Is(err, ErrQueueClosed) {
					return
				}
				if err != nil && !stderrors.Is(err, ErrQueueFull) {
					unexpected <- err
					return
				}
			}
		}()
	}

	close(start)
	require.NoError(t, q.Close())
	wg.Wait()

	close(unexpected)
	for err := range unexpected {
		t.Errorf("enqueue during close: %v", err)
	}
}

type depthDeltas struct {
	sum atomic.Int64
}

func (d *depthDeltas) RecordQueueDepth(_ context.Context, delta int64) {
	d.sum.Add(delta)
}

func TestWorkerPoolRecordsQueueDepth(t *testing.T) {
	adapter := platform.NewMockAdapter("twitter", 280)
	registry := platform.NewRegistry(nil)
	require.NoError(t, registry.Register(adapter))
	pub := publisher.New(registry, nil, publisher.WithRetryPolicy(errors.NoRetryPolicy{}))

	q := NewMemoryQueue(10, nil)
	defer q.Close()
	ctx := context.Background()

	const jobs = 3
	for i := 0; i < jobs; i++ {
		require.NoError(t, q.Enqueue(ctx, NewJob(testRequest("twitter"))))
	}

	depth := &depthDeltas{}
	pool := NewWorkerPool(q, pub, nil, 2, nil)
	pool.SetDepthRecorder(depth)
	require.NoError(t, pool.Start(ctx))

	require.Eventually(t, func() bool {
		return pool.Processed() == jobs
	}, 5*time.Second, 20*time.Millisecond)
	pool.Stop()

	assert.Equal(t, int64(-jobs), depth.sum.Load())
}

func TestWorkerPoolDrainsQueue(t *testing.T) {
	adapter := platform.NewMockAdapter("twitter", 280)
	registry := platform.NewRegistry(nil)
	require.NoError(t, registry.Register(adapter))
	pub := publisher.New(registry, nil, publisher.WithRetryPolicy(errors.NoRetryPolicy{}))

	store := tracker.NewMemoryStore()
	tr := tracker.New(store, nil, nil)

	q := NewMemoryQueue(10, nil)
	defer q.Close()
	ctx := context.Background()

	const jobs = 5
	for i := 0; i < jobs; i++ {
		require.NoError(t, q.Enqueue(ctx, NewJob(testRequest("twitter"))))
	}

	pool := NewWorkerPool(q, pub, tr, 2, nil)
	require.NoError(t, pool.Start(ctx))

	require.Eventually(t, func() bool {
		return pool.Processed() == jobs
	}, 5*time.Second, 20*time.Millisecond)
	pool.Stop()

	assert.Equal(t, int64(jobs), adapter.PublishCalls())
	assert.Zero(t, pool.Failed())

	records, err := store.List(ctx, tracker.StatusPublished, 0)
	require.NoError(t, err)
	assert.Len(t, records, jobs)
}

func TestWorkerPoolCountsFailedJobs(t *testing.T) {
	adapter := platform.NewMockAdapter("twitter", 280)
	adapter.PublishErr = errors.NewAuthenticationError("twitter", "bad token")
	registry := platform.NewRegistry(nil)
	require.NoError(t, registry.Register(adapter))
	pub := publisher.New(registry, nil, publisher.WithRetryPolicy(errors.NoRetryPolicy{}))

	q := NewMemoryQueue(10, nil)
	defer q.Close()
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, NewJob(testRequest("twitter"))))

	pool := NewWorkerPool(q, pub, nil, 1, nil)
	require.NoError(t, pool.Start(ctx))

	require.Eventually(t, func() bool {
		return pool.Processed() == 1
	}, 5*time.Second, 20*time.Millisecond)
	pool.Stop()

	assert.Equal(t, int64(1), pool.Failed())
}

func TestWorkerPoolDoubleStart(t *testing.T) {
	q := NewMemoryQueue(1, nil)
	defer q.Close()

	registry := platform.NewRegistry(nil)
	pool := NewWorkerPool(q, publisher.New(registry, nil), nil, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, pool.Start(ctx))
	assert.Error(t, pool.Start(ctx))
	pool.Stop()
}
