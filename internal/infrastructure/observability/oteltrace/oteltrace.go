package oteltrace

import (
	"context"

	"github.com/shopcore/shopcore/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct{ t trace.Tracer }

// New adapts the globally configured otel tracer provider to the tracing
// port. Spans are still real otel spans, so exporters and propagators
// configured on the global provider apply unchanged.
func New(name string) observability.Tracer {
	if name == "" {
		name = "shopcore"
	}
	return &tracer{t: otel.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}
