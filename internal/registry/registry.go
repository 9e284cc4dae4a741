// Package registry maps chain names to their scheduler, built once at
// startup and read-only thereafter.
package registry

import (
	"fmt"

	"github.com/nodeforge/rpc-gateway/internal/scheduler"
)

// Registry is an immutable chain name -> Scheduler lookup.
type Registry struct {
	chains map[string]*scheduler.Scheduler
}

// New builds a Registry from a map of chain name to Scheduler. The map is
// copied so later mutation of the caller's map cannot affect the registry.
func New(chains map[string]*scheduler.Scheduler) (*Registry, error) {
	if len(chains) == 0 {
		return nil, fmt.Errorf("registry: at least one chain is required")
	}

	frozen := make(map[string]*scheduler.Scheduler, len(chains))
	for name, s := range chains {
		if name == "" {
			return nil, fmt.Errorf("registry: chain name cannot be empty")
		}
		if s == nil {
			return nil, fmt.Errorf("registry: chain %q has a nil scheduler", name)
		}
		frozen[name] = s
	}

	return &Registry{chains: frozen}, nil
}

// Lookup returns the Scheduler for a chain name, or (nil, false) if unknown.
func (r *Registry) Lookup(chain string) (*scheduler.Scheduler, bool) {
	s, ok := r.chains[chain]
	return s, ok
}

// Chains returns the registered chain names in unspecified order.
func (r *Registry) Chains() []string {
	names := make([]string, 0, len(r.chains))
	for name := range r.chains {
		names = append(names, name)
	}
	return names
}

// Each calls fn for every chain and its scheduler. Iteration order is
// unspecified, matching the registry's read-only, order-agnostic contract.
func (r *Registry) Each(fn func(chain string, s *scheduler.Scheduler)) {
	for name, s := range r.chains {
		fn(name, s)
	}
}
