package retry

// ErrNoResponse is returned when every attempt across MAX_RETRIES failed,
// whether by quota exhaustion or forwarding failure.
type ErrNoResponse struct {
	// Attempted is true if at least one upstream was ever picked. The
	// Handler uses this to distinguish 503 (quota exhausted, no upstream
	// ever reached) from 502 (upstreams were reached but all failed).
	Attempted bool
}

func (e *ErrNoResponse) Error() string {
	if e.Attempted {
		return "all attempts failed"
	}
	return "no upstream available"
}
