package tracker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	recordKeyPrefix = "publishhub:record:"
	requestKeyFmt   = "publishhub:request:%s"
	statusKeyFmt    = "publishhub:records:%s"
)

// RedisStore persists records in Redis: one JSON value per record, a
// request-ID pointer, and a per-status sorted set ordered by creation
// time for listing.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed record store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Save writes a record and moves it between status indexes when its
// status changed.
func (s *RedisStore) Save(ctx context.Context, record *Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	previous, err := s.Get(ctx, record.ID)
	if err != nil && err != ErrNotFound {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, recordKeyPrefix+record.ID, data, 0)
	pipe.Set(ctx, fmt.Sprintf(requestKeyFmt, record.RequestID), record.ID, 0)
	if previous != nil && previous.Status != record.Status {
		pipe.ZRem(ctx, fmt.Sprintf(statusKeyFmt, previous.Status), record.ID)
	}
	pipe.ZAdd(ctx, fmt.Sprintf(statusKeyFmt, record.Status), redis.Z{
		Score:  float64(record.CreatedAt.UnixNano()),
		Member: record.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// Get returns a record by ID.
func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	data, err := s.client.Get(ctx, recordKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &record, nil
}

// FindByRequest resolves the request-ID pointer and loads the record.
func (s *RedisStore) FindByRequest(ctx context.Context, requestID string) (*Record, error) {
	id, err := s.client.Get(ctx, fmt.Sprintf(requestKeyFmt, requestID)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve request: %w", err)
	}
	return s.Get(ctx, id)
}

// List returns records filtered by status, newest first. The all-status
// listing walks every status index.
func (s *RedisStore) List(ctx context.Context, status Status, limit int) ([]*Record, error) {
	statuses := []Status{status}
	if status == "" {
		statuses = []Status{StatusPublishing, StatusPublished, StatusPartial, StatusFailed}
	}

	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	var records []*Record
	for _, st := range statuses {
		ids, err := s.client.ZRevRange(ctx, fmt.Sprintf(statusKeyFmt, st), 0, stop).Result()
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		for _, id := range ids {
			record, err := s.Get(ctx, id)
			if err == ErrNotFound {
				continue
			}
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
