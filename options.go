package publishhub

import (
	"github.com/kart-io/publishhub/pkg/config"
	"github.com/kart-io/publishhub/pkg/errors"
	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/queue"
	"github.com/kart-io/publishhub/pkg/tracker"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	cfg      *config.Config
	logger   logger.Logger
	policy   errors.RetryPolicy
	store    tracker.Store
	emitter  tracker.Emitter
	queue    queue.Queue
	adapters []platform.Adapter
}

func defaultOptions() *options {
	return &options{}
}

// WithConfig supplies a loaded configuration instead of reading the
// environment.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger replaces the default logger.
func WithLogger(log logger.Logger) Option {
	return func(o *options) { o.logger = log }
}

// WithRetryPolicy overrides the retry policy built from configuration.
func WithRetryPolicy(policy errors.RetryPolicy) Option {
	return func(o *options) { o.policy = policy }
}

// WithStore replaces the in-memory lifecycle store, e.g. with the Redis
// one.
func WithStore(store tracker.Store) Option {
	return func(o *options) { o.store = store }
}

// WithEmitter wires a broker emitter for settled results.
func WithEmitter(emitter tracker.Emitter) Option {
	return func(o *options) { o.emitter = emitter }
}

// WithQueue replaces the in-memory deferred queue.
func WithQueue(q queue.Queue) Option {
	return func(o *options) { o.queue = q }
}

// WithAdapter registers an extra platform adapter alongside the built-in
// set.
func WithAdapter(adapter platform.Adapter) Option {
	return func(o *options) { o.adapters = append(o.adapters, adapter) }
}
