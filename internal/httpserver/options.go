package httpserver

import (
	"net/http"
	"strings"
)

// Option configures a Server at construction, following the teacher's
// functional-options convention (chi_server/options.go).
type Option func(*Server)

// WithConfig replaces the full configuration.
func WithConfig(cfg Config) Option {
	return func(s *Server) { s.config = cfg }
}

// WithAddress sets the bind address, prefixing ":" if the caller passed a
// bare port.
func WithAddress(addr string) Option {
	return func(s *Server) {
		if !strings.HasPrefix(addr, ":") && !strings.Contains(addr, ":") {
			addr = ":" + addr
		}
		s.config.Address = addr
	}
}

// WithBodyLimit sets the maximum accepted request body size in bytes.
func WithBodyLimit(limit int64) Option {
	return func(s *Server) { s.config.BodyLimit = limit }
}

// WithHealthCheck registers a named readiness check.
func WithHealthCheck(name string, check HealthCheckFunc) Option {
	return func(s *Server) { s.healthChecks[name] = check }
}

// WithMiddleware appends a custom middleware, applied after the built-in
// recover/request-ID/body-limit chain.
func WithMiddleware(mw func(http.Handler) http.Handler) Option {
	return func(s *Server) { s.customMiddlewares = append(s.customMiddlewares, mw) }
}
