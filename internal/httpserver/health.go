package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/nodeforge/rpc-gateway/internal/observability"
)

// HealthCheckFunc reports whether one dependency, registered via
// WithHealthCheck, is currently healthy.
type HealthCheckFunc func(ctx context.Context) error

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthStatus struct {
	Status  string                 `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Checks  map[string]checkResult `json:"checks,omitempty"`
}

func runChecks(ctx context.Context, checks map[string]HealthCheckFunc, timeout time.Duration, obs observability.Observability) map[string]checkResult {
	if len(checks) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make(map[string]checkResult, len(checks))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for name, fn := range checks {
		wg.Add(1)
		go func(name string, fn HealthCheckFunc) {
			defer wg.Done()
			err := fn(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[name] = checkResult{Status: "unhealthy", Error: err.Error()}
				obs.Logger().Warn(ctx, "health check failed", observability.String("check", name), observability.Error(err))
				return
			}
			results[name] = checkResult{Status: "healthy"}
		}(name, fn)
	}

	wg.Wait()
	return results
}

func allHealthy(results map[string]checkResult) bool {
	for _, r := range results {
		if r.Status != "healthy" {
			return false
		}
	}
	return true
}

func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := runChecks(r.Context(), s.healthChecks, 5*time.Second, s.observability)

		status, code := "healthy", http.StatusOK
		if !allHealthy(results) {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(healthStatus{
			Status:  status,
			Service: s.config.ServiceName,
			Version: s.config.ServiceVersion,
			Checks:  results,
		})
	}
}

func (s *Server) readyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := runChecks(r.Context(), s.healthChecks, 3*time.Second, s.observability)
		if !allHealthy(results) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Service Unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func liveHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func welcomeHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("rpc-gateway is running\n"))
}
