package frpdebug

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ebb-frp/ebb/pkg/frp"
)

// Default tracer name for flush spans.
const defaultTracerName = "ebb"

// TraceConfig configures flush tracing.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "ebb").
	TracerName string

	// MinCallbacks skips spans for flushes that ran fewer callbacks.
	// Zero traces every flush, including empty ones.
	MinCallbacks int

	tracer trace.Tracer
}

// TraceOption configures flush tracing.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithMinCallbacks sets the minimum callback count for a flush to be traced.
func WithMinCallbacks(n int) TraceOption {
	return func(c *TraceConfig) {
		c.MinCallbacks = n
	}
}

// TraceFlushes records a span for each scheduler flush, using the global
// OpenTelemetry tracer provider. The span covers the flush's wall time and
// carries the callback count as an attribute. Any observer already
// installed is chained after the tracing one; the returned function
// restores it.
//
// Configure the provider in main() before attaching:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//	defer frpdebug.TraceFlushes(frp.DefaultScheduler())()
func TraceFlushes(s *frp.Scheduler, opts ...TraceOption) func() {
	config := TraceConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	var prev frp.FlushObserver
	prev = s.SetFlushObserver(func(callbacks int, elapsed time.Duration) {
		if callbacks >= config.MinCallbacks {
			// The observer fires after the flush completes, so the span is
			// reconstructed with explicit timestamps.
			start := time.Now().Add(-elapsed)
			_, span := config.tracer.Start(
				context.Background(),
				"ebb.flush",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithTimestamp(start),
				trace.WithAttributes(
					attribute.Int("ebb.flush.callbacks", callbacks),
				),
			)
			span.End(trace.WithTimestamp(start.Add(elapsed)))
		}
		if prev != nil {
			prev(callbacks, elapsed)
		}
	})
	return func() { s.SetFlushObserver(prev) }
}
