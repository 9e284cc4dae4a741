// Package scheduler implements the round-robin, quota-aware upstream
// scheduler that backs one chain.
package scheduler

import (
	"sync"

	"github.com/nodeforge/rpc-gateway/internal/upstream"
)

// Scheduler owns the ordered upstream list and rotation cursor for one
// chain. pick, rotate and refill are each atomic with respect to each
// other; the critical section is held only across the constant-time
// bookkeeping below, never across network I/O.
type Scheduler struct {
	mu        sync.Mutex
	upstreams []*upstream.Upstream
	cursor    int
}

// New builds a Scheduler over a non-empty, ordered upstream list. Order is
// fixed at construction and is the scheduling identity: position, not
// pointer identity, is what pick/rotate operate on.
func New(upstreams []*upstream.Upstream) (*Scheduler, error) {
	if len(upstreams) == 0 {
		return nil, &Error{Op: "new", Message: "upstream list cannot be empty"}
	}

	return &Scheduler{upstreams: upstreams}, nil
}

// Pick returns the URL of the next eligible upstream and decrements its
// token count, or ("", false) if every upstream is currently exhausted.
// It never advances the cursor on success: traffic stays on one upstream
// until its quota for the current window is drained.
func (s *Scheduler) Pick() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.upstreams)
	for probe := 0; probe < n; probe++ {
		i := s.cursor % n

		u := s.upstreams[i]
		if u.CurrentLimit > 0 {
			u.CurrentLimit--
			return u.URL, true
		}

		s.cursor = (i + 1) % n
	}

	return "", false
}

// Rotate advances the cursor unconditionally, without consuming a token.
// The Retry Controller calls this after a failed forwarding attempt so the
// next Pick starts at a different upstream.
func (s *Scheduler) Rotate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.upstreams)
	s.cursor = (s.cursor + 1) % n
}

// Refill resets every upstream's current token count to its configured
// quota. Called once per REFILL_INTERVAL by the refill ticker.
func (s *Scheduler) Refill() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.upstreams {
		u.CurrentLimit = u.RequestLimit
	}
}

// Snapshot returns a defensive copy of the upstream records, for tests and
// health reporting. It takes the same lock as Pick/Rotate/Refill.
func (s *Scheduler) Snapshot() []upstream.Upstream {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]upstream.Upstream, len(s.upstreams))
	for i, u := range s.upstreams {
		out[i] = *u
	}
	return out
}

// Len returns the number of configured upstreams.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.upstreams)
}
