package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kart-io/publishhub/pkg/logger"
)

const (
	readyKeySuffix    = ":ready"
	deferredKeySuffix = ":deferred"
)

// redisQueue buffers jobs in Redis: a list for ready jobs and a sorted
// set scored by due time for deferred ones. Due jobs are promoted on
// every Dequeue, so no background process is needed.
type redisQueue struct {
	client redis.UniversalClient
	prefix string
	closed atomic.Bool
	logger logger.Logger
}

// NewRedisQueue creates a Redis-backed job queue under a key prefix.
func NewRedisQueue(client redis.UniversalClient, prefix string, log logger.Logger) Queue {
	if prefix == "" {
		prefix = "publishhub:queue"
	}
	if log == nil {
		log = logger.Discard
	}
	return &redisQueue{client: client, prefix: prefix, logger: log}
}

// Enqueue adds a job, parking future-scheduled jobs on the deferred set.
func (q *redisQueue) Enqueue(ctx context.Context, job *Job) error {
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

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	if job.ScheduledAt != nil && job.ScheduledAt.After(now) {
		err = q.client.ZAdd(ctx, q.prefix+deferredKeySuffix, redis.Z{
			Score:  float64(job.ScheduledAt.UnixNano()),
			Member: data,
		}).Err()
		if err != nil {
			return fmt.Errorf("enqueue deferred job: %w", err)
		}
		q.logger.Debug("job deferred", "job_id", job.ID, "scheduled_at", job.ScheduledAt)
		return nil
	}

	if err := q.client.LPush(ctx, q.prefix+readyKeySuffix, data).Err(); err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	q.logger.Debug("job enqueued", "job_id", job.ID)
	return nil
}

// Dequeue promotes due deferred jobs, then pops the next ready job.
func (q *redisQueue) Dequeue(ctx context.Context) (*Job, error) {
	if q.closed.Load() {
		return nil, ErrQueueClosed
	}

	if err := q.promoteDue(ctx); err != nil {
		return nil, err
	}

	data, err := q.client.RPop(ctx, q.prefix+readyKeySuffix).Bytes()
	if err == redis.Nil {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue job: %w", err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// Size returns the number of buffered jobs, deferred ones included.
func (q *redisQueue) Size() int {
	ctx := context.Background()
	ready, err := q.client.LLen(ctx, q.prefix+readyKeySuffix).Result()
	if err != nil {
		return 0
	}
	deferred, err := q.client.ZCard(ctx, q.prefix+deferredKeySuffix).Result()
	if err != nil {
		return int(ready)
	}
	return int(ready + deferred)
}

// Close marks the queue closed. The Redis connection belongs to the
// caller and stays open.
func (q *redisQueue) Close() error {
	q.closed.Store(true)
	return nil
}

// promoteDue moves due deferred jobs onto the ready list.
func (q *redisQueue) promoteDue(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().UnixNano(), 10)
	due, err := q.client.ZRangeByScore(ctx, q.prefix+deferredKeySuffix, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		return fmt.Errorf("scan deferred jobs: %w", err)
	}

	for _, member := range due {
		removed, err := q.client.ZRem(ctx, q.prefix+deferredKeySuffix, member).Result()
		if err != nil {
			return fmt.Errorf("promote deferred job: %w", err)
		}
		// Another consumer may have promoted it first.
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, q.prefix+readyKeySuffix, member).Err(); err != nil {
			return fmt.Errorf("promote deferred job: %w", err)
		}
	}
	return nil
}
