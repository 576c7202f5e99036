// Package tracker records the lifecycle of publish requests: a record is
// opened when a request is accepted and settled with the per-platform
// outcomes when the fan-out completes. Settled results can be announced
// on a message broker for downstream consumers.
package tracker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kart-io/publishhub/pkg/errors"
	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/publisher"
	"github.com/kart-io/publishhub/pkg/utils/idgen"
)

// Status is the lifecycle state of a tracked publish request.
type Status string

const (
	// StatusPublishing means the fan-out is in flight.
	StatusPublishing Status = "publishing"
	// StatusPublished means every platform accepted the post.
	StatusPublished Status = "published"
	// StatusPartial means some platforms accepted and some failed.
	StatusPartial Status = "partial"
	// StatusFailed means no platform accepted the post.
	StatusFailed Status = "failed"
)

// Record is one tracked publish request.
type Record struct {
	ID        string              `json:"id"`
	RequestID string              `json:"request_id"`
	Platforms []string            `json:"platforms"`
	Status    Status              `json:"status"`
	Outcomes  []publisher.Outcome `json:"outcomes,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Store persists tracked records.
type Store interface {
	// Save writes a record, replacing any record with the same ID.
	Save(ctx context.Context, record *Record) error

	// Get returns a record by ID.
	Get(ctx context.Context, id string) (*Record, error)

	// FindByRequest returns the record opened for a request ID.
	FindByRequest(ctx context.Context, requestID string) (*Record, error)

	// List returns records filtered by status; an empty status returns
	// everything. Records come back newest first.
	List(ctx context.Context, status Status, limit int) ([]*Record, error)
}

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New(errors.ErrUnknown, "record not found")

// Emitter announces settled results to downstream consumers.
type Emitter interface {
	EmitResult(ctx context.Context, record *Record) error
}

// Tracker ties a store and an optional emitter into the publish flow.
type Tracker struct {
	store   Store
	emitter Emitter
	logger  logger.Logger
}

// New creates a Tracker. The emitter may be nil when no broker is wired.
func New(store Store, emitter Emitter, log logger.Logger) *Tracker {
	if log == nil {
		log = logger.Discard
	}
	return &Tracker{store: store, emitter: emitter, logger: log}
}

// Open records an accepted request as publishing.
func (t *Tracker) Open(ctx context.Context, requestID string, platforms []string) (*Record, error) {
	record := &Record{
		ID:        idgen.PostID(),
		RequestID: requestID,
		Platforms: append([]string(nil), platforms...),
		Status:    StatusPublishing,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := t.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("open record: %w", err)
	}
	return record, nil
}

// Settle moves a record to its terminal status from the fan-out result
// and announces it when an emitter is wired. Emit failures are logged,
// not returned: the record is already settled.
func (t *Tracker) Settle(ctx context.Context, record *Record, result *publisher.Result) error {
	record.Outcomes = result.Outcomes
	record.Status = statusOf(result.Status)
	record.UpdatedAt = time.Now()

	if err := t.store.Save(ctx, record); err != nil {
		return fmt.Errorf("settle record: %w", err)
	}

	if t.emitter != nil {
		if err := t.emitter.EmitResult(ctx, record); err != nil {
			t.logger.Warn("result event emit failed",
				"record_id", record.ID,
				"error", err.Error())
		}
	}
	return nil
}

// Get returns a tracked record by ID.
func (t *Tracker) Get(ctx context.Context, id string) (*Record, error) {
	return t.store.Get(ctx, id)
}

// List returns tracked records filtered by status.
func (t *Tracker) List(ctx context.Context, status Status, limit int) ([]*Record, error) {
	return t.store.List(ctx, status, limit)
}

func statusOf(status publisher.ResultStatus) Status {
	switch status {
	case publisher.ResultSuccess:
		return StatusPublished
	case publisher.ResultPartial:
		return StatusPartial
	default:
		return StatusFailed
	}
}

// MemoryStore keeps records in process memory. Suitable for tests and
// single-process deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Save writes a record.
func (s *MemoryStore) Save(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *record
	s.records[record.ID] = &clone
	return nil
}

// Get returns a record by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *record
	return &clone, nil
}

// FindByRequest returns the record opened for a request ID.
func (s *MemoryStore) FindByRequest(ctx context.Context, requestID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if record.RequestID == requestID {
			clone := *record
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

// List returns records filtered by status, newest first.
func (s *MemoryStore) List(ctx context.Context, status Status, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*Record, 0, len(s.records))
	for _, record := range s.records {
		if status == "" || record.Status == status {
			clone := *record
			matched = append(matched, &clone)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
