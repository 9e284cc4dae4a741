// Package handler implements the Request Handler (spec §4.5): it extracts
// the chain from the inbound path, looks it up in the Registry, hands the
// body to the Retry Controller, and shapes the final HTTP response.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nodeforge/rpc-gateway/internal/forwarder"
	"github.com/nodeforge/rpc-gateway/internal/httpserver"
	"github.com/nodeforge/rpc-gateway/internal/observability"
	"github.com/nodeforge/rpc-gateway/internal/registry"
	"github.com/nodeforge/rpc-gateway/internal/responses"
	"github.com/nodeforge/rpc-gateway/internal/retry"
)

// Executor runs the retry loop for one chain. Satisfied by *retry.Controller.
type Executor interface {
	Execute(ctx context.Context, chain string, sched retry.Scheduler, method string, body []byte) (*forwarder.Response, error)
}

// Handler routes inbound /{chain}/* traffic through the Retry Controller.
type Handler struct {
	registry     *registry.Registry
	executor     Executor
	obs          observability.Observability
	maxBodyBytes int64
}

// New builds a Handler over a populated Registry.
func New(reg *registry.Registry, executor Executor, obs observability.Observability, maxBodyBytes int64) *Handler {
	return &Handler{
		registry:     reg,
		executor:     executor,
		obs:          obs,
		maxBodyBytes: maxBodyBytes,
	}
}

// Register binds the Handler onto router's /{chain}/* route, following the
// httpserver.Router contract.
func (h *Handler) Register(router chi.Router) {
	router.HandleFunc("/{chain}/*", h.ServeHTTP)
	router.HandleFunc("/{chain}", h.ServeHTTP)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	chain := chi.URLParam(r, "chain")
	reqID := httpserver.RequestIDFromContext(r.Context())
	log := h.obs.Logger().With(observability.String("chain", chain), observability.String("request_id", reqID))

	sched, ok := h.registry.Lookup(chain)
	if !ok {
		log.Warn(r.Context(), "unknown chain requested")
		responses.PlainError(w, http.StatusBadRequest, fmt.Sprintf("Invalid chain: %s", chain))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Warn(r.Context(), "failed to read request body", observability.Error(err))
		responses.PlainError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	resp, err := h.executor.Execute(r.Context(), chain, sched, r.Method, body)
	if err != nil {
		var noResp *retry.ErrNoResponse
		if errors.As(err, &noResp) && !noResp.Attempted {
			log.Warn(r.Context(), "request rejected: quota exhausted on every upstream")
			responses.PlainError(w, http.StatusServiceUnavailable, "No available RPC URLs")
			return
		}

		log.Error(r.Context(), "request failed: all attempts exhausted", observability.Error(err))
		responses.PlainError(w, http.StatusBadGateway, "All upstreams failed to respond")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}
