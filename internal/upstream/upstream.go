// Package upstream models a single RPC endpoint and its per-second quota.
package upstream

import "fmt"

// Upstream is one RPC endpoint plus its mutable token counter.
//
// Upstream itself holds no lock: callers (the scheduler) serialize all
// access to CurrentLimit, per spec's requirement that the critical section
// live in the scheduler, not scattered across upstream records.
type Upstream struct {
	URL          string
	RequestLimit uint32
	CurrentLimit uint32
}

// New constructs an Upstream, validating the invariant
// 0 <= current_limit <= request_limit.
func New(url string, requestLimit, currentLimit uint32) (*Upstream, error) {
	if url == "" {
		return nil, fmt.Errorf("upstream: url is required")
	}
	if currentLimit > requestLimit {
		return nil, fmt.Errorf("upstream %q: current_limit (%d) exceeds request_limit (%d)", url, currentLimit, requestLimit)
	}

	return &Upstream{
		URL:          url,
		RequestLimit: requestLimit,
		CurrentLimit: currentLimit,
	}, nil
}
