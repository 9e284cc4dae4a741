package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts spans for inbound requests and forwarding attempts.
// It wraps the otel trace API directly; no exporter is configured here,
// so spans are cheap no-ops until a TracerProvider is registered by the
// process that embeds this gateway.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}

// Span is the subset of trace.Span this gateway needs.
type Span interface {
	SetAttributes(fields ...Field)
	AddEvent(name string, fields ...Field)
	End()
}

type otelTracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer backed by the named otel tracer.
func NewTracer(name string) Tracer {
	return &otelTracer{tracer: otel.Tracer(name)}
}

func (t *otelTracer) Start(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) SetAttributes(fields ...Field) {
	s.span.SetAttributes(toAttributes(fields)...)
}

func (s *otelSpan) AddEvent(name string, fields ...Field) {
	s.span.AddEvent(name, trace.WithAttributes(toAttributes(fields)...))
}

func (s *otelSpan) End() {
	s.span.End()
}

func toAttributes(fields []Field) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			attrs = append(attrs, attribute.String(f.Key, v))
		case int:
			attrs = append(attrs, attribute.Int(f.Key, v))
		case int64:
			attrs = append(attrs, attribute.Int64(f.Key, v))
		case bool:
			attrs = append(attrs, attribute.Bool(f.Key, v))
		default:
			attrs = append(attrs, attribute.String(f.Key, fmt.Sprintf("%v", v)))
		}
	}
	return attrs
}
