package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/riskibarqy/pickup-games/internal/platform/tracing"
)

const handlerSpanPrefix = "httpapi.Handler."

var apiTracer = otel.Tracer("pickup-games/internal/interfaces/httpapi")

// startSpan opens spans for handler entry points only. Helpers get a no-op span
// and report into the handler span through ctx.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !shouldCreateHTTPAPISpan(name) {
		return ctx, noop.Span{}
	}
	return tracing.StartChild(ctx, apiTracer, name)
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix) && len(name) > len(handlerSpanPrefix)
}
