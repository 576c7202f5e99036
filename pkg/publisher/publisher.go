package publisher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kart-io/publishhub/pkg/errors"
	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/utils/idgen"
	"github.com/kart-io/publishhub/pkg/validation"
)

const (
	// DefaultMaxWorkers caps concurrent platform dispatches per request.
	DefaultMaxWorkers = 5

	// DefaultTimeout bounds one platform dispatch including retries.
	DefaultTimeout = 60 * time.Second
)

// Metrics receives one measurement per finished platform dispatch.
// *observability.Telemetry satisfies it.
type Metrics interface {
	RecordPublish(ctx context.Context, platformName string, duration time.Duration, success bool)
}

// Publisher fans a publish request out to its target platforms. Each
// platform is dispatched through its registered adapter; failures on one
// platform never affect the others.
type Publisher struct {
	registry   *platform.Registry
	policy     errors.RetryPolicy
	logger     logger.Logger
	tracer     trace.Tracer
	metrics    Metrics
	timeout    time.Duration
	maxWorkers int
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithRetryPolicy sets the retry policy applied to each platform call.
func WithRetryPolicy(policy errors.RetryPolicy) Option {
	return func(p *Publisher) { p.policy = policy }
}

// WithMetrics sets the recorder fed by every platform dispatch.
func WithMetrics(m Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// WithTracer sets the tracer used for submit and dispatch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Publisher) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// WithTimeout sets the default per-platform dispatch timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Publisher) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithMaxWorkers sets the concurrent dispatch cap.
func WithMaxWorkers(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.maxWorkers = n
		}
	}
}

// New creates a Publisher over a platform registry.
func New(registry *platform.Registry, log logger.Logger, opts ...Option) *Publisher {
	if log == nil {
		log = logger.Discard
	}

	p := &Publisher{
		registry:   registry,
		policy:     errors.NewExponentialBackoffPolicy(time.Second, 30*time.Second, 3),
		logger:     log,
		tracer:     otel.Tracer("publishhub/publisher"),
		timeout:    DefaultTimeout,
		maxWorkers: DefaultMaxWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit fans the request out and blocks until every platform has a
// terminal outcome. The returned result holds exactly one outcome per
// target platform, in submission order. Submit itself fails only on a
// malformed request; per-platform failures live in the outcomes.
func (p *Publisher) Submit(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, errors.New(errors.ErrInvalidRequest, "request is nil")
	}
	if len(req.TargetPlatforms) == 0 {
		return nil, errors.New(errors.ErrInvalidRequest, "no target platforms")
	}
	if req.Text == "" && len(req.Media) == 0 {
		return nil, errors.New(errors.ErrInvalidRequest, "request has neither text nor media")
	}
	if req.ID == "" {
		req.ID = idgen.RequestID()
	}

	ctx, span := p.tracer.Start(ctx, "publisher.Submit", trace.WithAttributes(
		attribute.String("request.id", req.ID),
		attribute.String("request.post_type", string(req.PostType)),
		attribute.Int("request.platforms", len(req.TargetPlatforms)),
	))
	defer span.End()

	start := time.Now()
	outcomes := make([]Outcome, len(req.TargetPlatforms))

	if req.Mode == ModeSequential {
		for i, name := range req.TargetPlatforms {
			outcomes[i] = p.dispatch(ctx, req, name)
		}
	} else {
		workers := p.maxWorkers
		if len(req.TargetPlatforms) < workers {
			workers = len(req.TargetPlatforms)
		}
		sem := make(chan struct{}, workers)

		var wg sync.WaitGroup
		for i, name := range req.TargetPlatforms {
			wg.Add(1)
			go func(idx int, platformName string) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				outcomes[idx] = p.dispatch(ctx, req, platformName)
			}(i, name)
		}
		wg.Wait()
	}

	result := newResult(req.ID, outcomes, time.Since(start))
	span.SetAttributes(
		attribute.String("result.status", string(result.Status)),
		attribute.Int("result.succeeded", result.Succeeded),
		attribute.Int("result.failed", result.Failed),
	)
	p.logger.Info("publish request completed",
		"request_id", req.ID,
		"status", result.Status,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"duration", result.Duration)
	return result, nil
}

// Preview formats the request for every target platform without
// publishing. Unknown platforms and formatting failures surface as
// per-platform errors in the returned map.
func (p *Publisher) Preview(req *Request) (map[string]*platform.FormattedPost, map[string]error) {
	posts := make(map[string]*platform.FormattedPost, len(req.TargetPlatforms))
	failures := make(map[string]error)

	for _, name := range req.TargetPlatforms {
		adapter, err := p.registry.Get(name)
		if err != nil {
			failures[name] = errors.NewConfigurationError(name).WithCause(err)
			continue
		}
		post, err := adapter.Format(req.Text, req.Media, req.PostType, req.Options[name])
		if err != nil {
			failures[name] = err
			continue
		}
		posts[name] = post
	}
	return posts, failures
}

// dispatch runs one platform's full pipeline: resolve, validate, format,
// publish with retries. A panic inside the adapter is contained here and
// becomes a failed outcome for this platform alone.
func (p *Publisher) dispatch(ctx context.Context, req *Request, name string) (outcome Outcome) {
	start := time.Now()
	outcome = Outcome{Platform: name}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("platform dispatch panicked", "platform", name, "panic", r)
			outcome.Status = OutcomeFailed
			outcome.Error = errors.Newf(errors.ErrInternal, "adapter panic: %v", r).WithPlatform(name)
		}
		outcome.Duration = time.Since(start)
		if p.metrics != nil {
			p.metrics.RecordPublish(ctx, name, outcome.Duration, outcome.Status == OutcomeSucceeded)
		}
	}()

	ctx, span := p.tracer.Start(ctx, "publisher.dispatch", trace.WithAttributes(
		attribute.String("platform", name),
	))
	defer span.End()

	adapter, err := p.registry.Get(name)
	if err != nil {
		outcome.Status = OutcomeFailed
		outcome.Error = errors.NewConfigurationError(name).WithCause(err)
		return outcome
	}

	issues := validation.Validate(adapter.Capabilities(), req.PostType, req.Text, req.Media)
	outcome.Issues = issues
	if validation.HasErrors(issues) {
		p.logger.Warn("validation blocked platform", "platform", name, "issues", len(issues))
		outcome.Status = OutcomeSkipped
		for _, issue := range issues {
			if issue.Severity == validation.SeverityError {
				outcome.Error = errors.NewValidationError(name, issue.Message)
				break
			}
		}
		return outcome
	}

	post, err := adapter.Format(req.Text, req.Media, req.PostType, req.Options[name])
	if err != nil {
		outcome.Status = OutcomeFailed
		outcome.Error = errors.Classify(err).WithPlatform(name)
		return outcome
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = p.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cred := req.Credentials[name]
	executor := errors.NewExecutor(p.policy, p.logger)

	var resp *platform.PublishResponse
	attempts := 0
	err = executor.Execute(ctx, func() error {
		attempts++
		var callErr error
		resp, callErr = adapter.Publish(ctx, post, cred)
		return callErr
	})
	outcome.Attempts = attempts

	if err != nil {
		publishErr := errors.Classify(err).WithPlatform(name)
		span.SetAttributes(attribute.String("error.code", string(publishErr.Code)))
		outcome.Status = OutcomeFailed
		outcome.Error = publishErr
		return outcome
	}

	outcome.Status = OutcomeSucceeded
	outcome.ExternalID = resp.ExternalID
	p.logger.Debug("platform publish succeeded",
		"platform", name,
		"external_id", resp.ExternalID,
		"attempts", attempts)
	return outcome
}

// CapabilitiesOf returns the capability descriptor of a registered
// platform.
func (p *Publisher) CapabilitiesOf(name string) (platform.Capability, error) {
	caps, err := p.registry.Capabilities(name)
	if err != nil {
		return platform.Capability{}, fmt.Errorf("capabilities of %s: %w", name, err)
	}
	return caps, nil
}
