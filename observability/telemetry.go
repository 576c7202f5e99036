// Package observability wires OpenTelemetry tracing and metrics for the
// orchestrator. With telemetry disabled every handle is a no-op, so
// callers never need to branch.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "publishhub"

// Config controls telemetry export.
type Config struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Version     string
}

// Telemetry holds the tracer, meter, and the orchestrator's instruments.
type Telemetry struct {
	tracer        trace.Tracer
	meter         metric.Meter
	traceProvider *sdktrace.TracerProvider

	publishTotal    metric.Int64Counter
	publishFailed   metric.Int64Counter
	publishDuration metric.Float64Histogram
	queueDepth      metric.Int64UpDownCounter
}

// New creates a Telemetry provider. When disabled, the global no-op
// tracer and meter are used and nothing is exported.
func New(cfg Config) (*Telemetry, error) {
	t := &Telemetry{}

	if cfg.ServiceName == "" {
		cfg.ServiceName = instrumentationName
	}

	if !cfg.Enabled {
		t.tracer = otel.Tracer(instrumentationName)
		t.meter = otel.Meter(instrumentationName)
		return t, nil
	}

	if err := t.initTracing(cfg); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	if err := t.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return t, nil
}

func (t *Telemetry) initTracing(cfg Config) error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	exporter, err := otlptrace.New(context.Background(),
		otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(cfg.Endpoint),
		),
	)
	if err != nil {
		return fmt.Errorf("create exporter: %w", err)
	}

	t.traceProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(t.traceProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.tracer = otel.Tracer(instrumentationName)
	return nil
}

func (t *Telemetry) initMetrics() error {
	t.meter = otel.Meter(instrumentationName)

	var err error
	t.publishTotal, err = t.meter.Int64Counter(
		"publishhub_publishes_total",
		metric.WithDescription("Total platform publish attempts"),
	)
	if err != nil {
		return fmt.Errorf("create publishes counter: %w", err)
	}

	t.publishFailed, err = t.meter.Int64Counter(
		"publishhub_publish_failures_total",
		metric.WithDescription("Total failed platform publishes"),
	)
	if err != nil {
		return fmt.Errorf("create failures counter: %w", err)
	}

	t.publishDuration, err = t.meter.Float64Histogram(
		"publishhub_publish_duration_seconds",
		metric.WithDescription("Duration of platform publish calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("create duration histogram: %w", err)
	}

	t.queueDepth, err = t.meter.Int64UpDownCounter(
		"publishhub_queue_depth",
		metric.WithDescription("Current deferred queue depth"),
	)
	if err != nil {
		return fmt.Errorf("create queue depth counter: %w", err)
	}
	return nil
}

// StartSpan starts a span for an orchestrator operation.
func (t *Telemetry) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if t.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// RecordPublish records one finished platform publish.
func (t *Telemetry) RecordPublish(ctx context.Context, platformName string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("platform", platformName),
		attribute.String("status", status),
	)

	if t.publishTotal != nil {
		t.publishTotal.Add(ctx, 1, attrs)
	}
	if !success && t.publishFailed != nil {
		t.publishFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("platform", platformName)))
	}
	if t.publishDuration != nil {
		t.publishDuration.Record(ctx, duration.Seconds(), attrs)
	}
}

// RecordQueueDepth adjusts the deferred queue depth gauge.
func (t *Telemetry) RecordQueueDepth(ctx context.Context, delta int64) {
	if t.queueDepth != nil {
		t.queueDepth.Add(ctx, delta)
	}
}

// EndSpan closes a span with an error status when err is non-nil.
func (t *Telemetry) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Tracer returns the tracer handle.
func (t *Telemetry) Tracer() trace.Tracer { return t.tracer }

// Meter returns the meter handle.
func (t *Telemetry) Meter() metric.Meter { return t.meter }

// Shutdown flushes and stops the exporters.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.traceProvider != nil {
		return t.traceProvider.Shutdown(ctx)
	}
	return nil
}
