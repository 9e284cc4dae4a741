// Package observability is the gateway's facade over logging, tracing and
// metrics, following the teacher's pattern of injecting one small interface
// into every layer instead of wiring zap/otel/prometheus directly.
package observability

import "context"

// Observability bundles the three signal types. It's the only type that
// should be passed into application components.
type Observability interface {
	Logger() Logger
	Tracer() Tracer
	Metrics() Metrics
}

type facade struct {
	logger  Logger
	tracer  Tracer
	metrics Metrics
}

// New builds the default Observability facade for the given service name.
func New(serviceName string) (Observability, error) {
	logger, err := NewLogger(serviceName)
	if err != nil {
		return nil, err
	}

	return &facade{
		logger:  logger,
		tracer:  NewTracer(serviceName),
		metrics: NewMetrics(),
	}, nil
}

func (f *facade) Logger() Logger   { return f.logger }
func (f *facade) Tracer() Tracer   { return f.tracer }
func (f *facade) Metrics() Metrics { return f.metrics }

// Shutdown flushes the logger. Safe to call once at process exit.
func (f *facade) Shutdown(_ context.Context) error {
	if zl, ok := f.logger.(interface{ Sync() error }); ok {
		// Sync returning an error on stdout/stderr is expected on some
		// platforms (e.g. when stdout is a terminal); not treated as fatal.
		_ = zl.Sync()
	}
	return nil
}
