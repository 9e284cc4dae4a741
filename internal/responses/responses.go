// Package responses writes the gateway's JSON response envelopes, the way
// the teacher's pkg/responses package centralizes JSON encoding so handlers
// never call json.NewEncoder directly.
package responses

import (
	"encoding/json"
	"net/http"
)

// envelope is the gateway's error shape for unstructured internal failures
// (e.g. the panic-recovery middleware), simplified from the teacher's RFC
// 7807 ProblemDetail — it still carries a request ID. Spec §4.5's pinned
// error bodies are served by PlainError instead, never wrapped in this.
type envelope struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// JSON writes data as a JSON response body with the given status code.
// Mirrors the teacher's pkg/responses.JSON: never panics on encode failure.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// Error writes {"error": message} with the given status code and, when
// non-empty, a request_id field for correlating with the access log.
func Error(w http.ResponseWriter, statusCode int, message, requestID string) {
	JSON(w, statusCode, envelope{Error: message, RequestID: requestID})
}

// PlainError writes message as the literal response body with
// Content-Type: application/json, per spec §4.5's pinned error bodies
// (e.g. "Invalid chain: polygon") rather than wrapping it in envelope —
// those exact strings are asserted verbatim by spec §8's scenarios.
func PlainError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(message))
}

// Raw writes a bare status code and plain-text body.
func Raw(w http.ResponseWriter, statusCode int, body string) {
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}
