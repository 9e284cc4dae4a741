package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// NewNoop returns an Observability facade with zero runtime overhead, for
// tests and for components that don't want to depend on a live logger.
func NewNoop() Observability {
	return &facade{
		logger:  noopLogger{},
		tracer:  noopTracer{},
		metrics: noopMetrics{},
	}
}

type noopLogger struct{}

func (noopLogger) Debug(context.Context, string, ...Field) {}
func (noopLogger) Info(context.Context, string, ...Field)  {}
func (noopLogger) Warn(context.Context, string, ...Field)  {}
func (noopLogger) Error(context.Context, string, ...Field) {}
func (l noopLogger) With(...Field) Logger                  { return l }

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) SetAttributes(...Field)    {}
func (noopSpan) AddEvent(string, ...Field) {}
func (noopSpan) End()                      {}

type noopMetrics struct{}

func (noopMetrics) ForwardAttempt(string, string, string) {}
func (noopMetrics) AttemptsPerRequest(string, int)        {}
func (noopMetrics) QuotaExhausted(string)                 {}
func (noopMetrics) Registry() *prometheus.Registry        { return prometheus.NewRegistry() }
