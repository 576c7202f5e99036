package publishhub

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/publishhub/observability"
	"github.com/kart-io/publishhub/pkg/config"
	"github.com/kart-io/publishhub/pkg/errors"
	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/platforms/bluesky"
	"github.com/kart-io/publishhub/pkg/platforms/facebook"
	"github.com/kart-io/publishhub/pkg/platforms/instagram"
	"github.com/kart-io/publishhub/pkg/platforms/linkedin"
	"github.com/kart-io/publishhub/pkg/platforms/mastodon"
	"github.com/kart-io/publishhub/pkg/platforms/pinterest"
	"github.com/kart-io/publishhub/pkg/platforms/tiktok"
	"github.com/kart-io/publishhub/pkg/platforms/twitter"
	"github.com/kart-io/publishhub/pkg/publisher"
	"github.com/kart-io/publishhub/pkg/queue"
	"github.com/kart-io/publishhub/pkg/tracker"
)

// Client is the orchestrator facade: it owns the platform registry, the
// fan-out publisher, the lifecycle tracker, and the deferred queue.
type Client struct {
	cfg       *config.Config
	logger    logger.Logger
	registry  *platform.Registry
	publisher *publisher.Publisher
	tracker   *tracker.Tracker
	queue     queue.Queue
	pool      *queue.WorkerPool
	telemetry *observability.Telemetry

	poolCancel context.CancelFunc
}

// New creates a fully wired client. Without options it runs on defaults:
// the built-in platform set, an in-memory lifecycle store, and an
// in-memory deferred queue.
func New(opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	cfg := o.cfg
	if cfg == nil {
		loaded, err := config.Load("")
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	log := o.logger
	if log == nil {
		log = logger.New(logger.ParseLevel(cfg.LogLevel))
	}

	telemetry, err := observability.New(observability.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	registry := platform.NewRegistry(log)
	if err := registerBuiltins(registry, cfg, log); err != nil {
		return nil, err
	}
	for _, adapter := range o.adapters {
		if err := registry.Register(adapter); err != nil {
			return nil, err
		}
	}

	policy := o.policy
	if policy == nil {
		policy = errors.NewExponentialBackoffPolicy(
			cfg.Retry.BaseDelay, cfg.Retry.MaxDelay, cfg.Retry.MaxAttempts)
	}

	pub := publisher.New(registry, log,
		publisher.WithRetryPolicy(policy),
		publisher.WithTimeout(cfg.Publish.Timeout),
		publisher.WithMaxWorkers(cfg.Publish.MaxWorkers),
		publisher.WithTracer(telemetry.Tracer()),
		publisher.WithMetrics(telemetry),
	)

	store := o.store
	if store == nil {
		store = tracker.NewMemoryStore()
	}
	tr := tracker.New(store, o.emitter, log)

	q := o.queue
	if q == nil {
		q = queue.NewMemoryQueue(cfg.Queue.Capacity, log)
	}

	client := &Client{
		cfg:       cfg,
		logger:    log,
		registry:  registry,
		publisher: pub,
		tracker:   tr,
		queue:     q,
		telemetry: telemetry,
	}

	poolCtx, cancel := context.WithCancel(context.Background())
	client.poolCancel = cancel
	client.pool = queue.NewWorkerPool(q, pub, tr, cfg.Queue.Workers, log)
	client.pool.SetDepthRecorder(telemetry)
	if err := client.pool.Start(poolCtx); err != nil {
		cancel()
		return nil, err
	}

	log.Info("client ready", "platforms", registry.List())
	return client, nil
}

func registerBuiltins(registry *platform.Registry, cfg *config.Config, log logger.Logger) error {
	adapters := []platform.Adapter{
		twitter.New(cfg.Platforms.Twitter, log),
		mastodon.New(cfg.Platforms.Mastodon, log),
		bluesky.New(cfg.Platforms.Bluesky, log),
		instagram.New(cfg.Platforms.Instagram, log),
		facebook.New(cfg.Platforms.Facebook, log),
		linkedin.New(cfg.Platforms.LinkedIn, log),
		tiktok.New(cfg.Platforms.TikTok, log),
		pinterest.New(cfg.Platforms.Pinterest, log),
	}
	for _, adapter := range adapters {
		if err := registry.Register(adapter); err != nil {
			return fmt.Errorf("register %s: %w", adapter.Name(), err)
		}
	}
	return nil
}

// Publish fans the request out synchronously and tracks its lifecycle.
// The returned result holds one outcome per target platform in
// submission order.
func (c *Client) Publish(ctx context.Context, req *publisher.Request) (*publisher.Result, error) {
	ctx, span := c.telemetry.StartSpan(ctx, "client.Publish")
	result, err := c.publish(ctx, req)
	c.telemetry.EndSpan(span, err)
	return result, err
}

func (c *Client) publish(ctx context.Context, req *publisher.Request) (*publisher.Result, error) {
	record, err := c.tracker.Open(ctx, reqID(req), targetsOf(req))
	if err != nil {
		c.logger.Warn("lifecycle record open failed", "error", err.Error())
	}

	result, err := c.publisher.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	if record != nil {
		record.RequestID = result.RequestID
		if err := c.tracker.Settle(ctx, record, result); err != nil {
			c.logger.Warn("lifecycle record settle failed", "error", err.Error())
		}
	}
	return result, nil
}

// PublishAsync enqueues the request for background dispatch, honoring a
// future ScheduledAt. It returns the job ID.
func (c *Client) PublishAsync(ctx context.Context, req *publisher.Request) (string, error) {
	if req == nil || len(req.TargetPlatforms) == 0 {
		return "", errors.New(errors.ErrInvalidRequest, "request has no target platforms")
	}
	job := queue.NewJob(req)
	if err := c.queue.Enqueue(ctx, job); err != nil {
		return "", fmt.Errorf("enqueue publish job: %w", err)
	}
	c.telemetry.RecordQueueDepth(ctx, 1)
	return job.ID, nil
}

// Preview formats the request for every target platform without
// publishing anything.
func (c *Client) Preview(req *publisher.Request) (map[string]*platform.FormattedPost, map[string]error) {
	return c.publisher.Preview(req)
}

// Capabilities returns the capability descriptor of a platform.
func (c *Client) Capabilities(name string) (platform.Capability, error) {
	return c.registry.Capabilities(name)
}

// Platforms returns the sorted names of all registered platforms.
func (c *Client) Platforms() []string {
	return c.registry.List()
}

// Health probes every instantiated platform adapter.
func (c *Client) Health(ctx context.Context) map[string]error {
	return c.registry.Health(ctx)
}

// Record returns a tracked lifecycle record by ID.
func (c *Client) Record(ctx context.Context, id string) (*tracker.Record, error) {
	return c.tracker.Get(ctx, id)
}

// Records lists tracked records filtered by status.
func (c *Client) Records(ctx context.Context, status tracker.Status, limit int) ([]*tracker.Record, error) {
	return c.tracker.List(ctx, status, limit)
}

// Close drains the worker pool and releases resources.
func (c *Client) Close() error {
	c.pool.Stop()
	c.poolCancel()

	if err := c.queue.Close(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.telemetry.Shutdown(ctx)
}

func reqID(req *publisher.Request) string {
	if req == nil {
		return ""
	}
	return req.ID
}

func targetsOf(req *publisher.Request) []string {
	if req == nil {
		return nil
	}
	return req.TargetPlatforms
}
