// Package httpserver wraps chi.Router the way the teacher's
// pkg/http_server/chi_server does: one Server owning the middleware chain,
// support endpoints, and graceful lifecycle, configured via functional
// options and driven by the observability facade rather than a global
// logger.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nodeforge/rpc-gateway/internal/observability"
)

// Server is the gateway's inbound HTTP listener.
type Server struct {
	router            chi.Router
	httpServer        *http.Server
	config            Config
	observability     observability.Observability
	registry          *prometheus.Registry
	healthChecks      map[string]HealthCheckFunc
	customMiddlewares []func(http.Handler) http.Handler
	shutdownOnce      sync.Once
}

// New builds a Server. registry is the Prometheus registry exposed at
// /metrics — callers pass the one owned by their observability.Metrics.
func New(obs observability.Observability, registry *prometheus.Registry, opts ...Option) (*Server, error) {
	s := &Server{
		config:        DefaultConfig(),
		observability: obs,
		registry:      registry,
		healthChecks:  make(map[string]HealthCheckFunc),
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	s.router = chi.NewRouter()
	s.registerMiddlewares()
	s.registerSupportEndpoints()

	s.httpServer = &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	return s, nil
}

// RegisterRouters wires one or more route groups onto the server's router.
func (s *Server) RegisterRouters(routers ...Router) *Server {
	for _, r := range routers {
		r.Register(s.router)
	}
	s.observability.Logger().Info(context.Background(), "routers registered", observability.Int("count", len(routers)))
	return s
}

func (s *Server) registerMiddlewares() {
	s.router.Use(recoverMiddleware(s.observability))
	s.router.Use(requestIDMiddleware())
	s.router.Use(bodyLimitMiddleware(s.config.BodyLimit))

	for _, mw := range s.customMiddlewares {
		s.router.Use(mw)
	}
}

func (s *Server) registerSupportEndpoints() {
	s.router.Get("/", welcomeHandler)
	s.router.Get("/health", s.healthHandler())
	s.router.Get("/ready", s.readyHandler())
	s.router.Get("/live", liveHandler)

	if s.registry != nil {
		handler := promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
		s.router.Handle("/metrics", handler)
	}

	s.observability.Logger().Info(context.Background(), "support endpoints registered")
}
