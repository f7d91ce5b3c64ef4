// Package tracing holds span helpers shared by the HTTP and use case layers.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// StartChild starts a span only when ctx already carries a valid one.
// Untraced paths such as health checks and cron ticks get a no-op span instead of a new root.
func StartChild(ctx context.Context, tracer trace.Tracer, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if name == "" || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, noop.Span{}
	}
	return tracer.Start(ctx, name, opts...)
}
