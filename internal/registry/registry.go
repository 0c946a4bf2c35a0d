// Package registry implements the Policy Registry: a mapping from policy
// identifiers to factories, and the sequential, fail-fast build of a
// configured policy list into a request chain plus an admin router.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/aras-services/bouncer/config"
	"github.com/aras-services/bouncer/internal/chain"
	"github.com/aras-services/bouncer/internal/router"
	"github.com/aras-services/bouncer/pkg/policy"
)

// Registry maps a PolicyIdentifier string to the factory that builds
// instances of it.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]policy.Factory
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{factories: make(map[string]policy.Factory)}
}

// Register adds f under f.PolicyID(), validating the identifier shape.
// Re-registering an identifier overwrites the previous factory (I4).
func (r *Registry) Register(f policy.Factory) error {
	id := f.PolicyID()
	if _, err := policy.ParseIdentifier(id); err != nil {
		return fmt.Errorf("registering policy factory: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[id] = f
	return nil
}

func (r *Registry) lookup(id string) (policy.Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[id]
	return f, ok
}

// BuildChain walks configs in declared order, invoking the registered
// factory for each and collecting the resulting instances. Construction is
// sequential so any error names the offending policy (per Design Notes,
// "Async construction"). Instances with ProcessesRequests()==false
// contribute admin routes only and are omitted from the returned chain.
func (r *Registry) BuildChain(ctx context.Context, configs []config.PolicyConfig, deps policy.Dependencies) (*chain.Chain, *router.Router, error) {
	rtr := router.New()
	var processors []policy.Policy

	for i, pc := range configs {
		factory, ok := r.lookup(pc.Provider)
		if !ok {
			return nil, nil, fmt.Errorf("policy config[%d] (id=%q): no factory registered for provider %q", i, pc.ID, pc.Provider)
		}

		if err := factory.ValidateConfig(pc.Parameters); err != nil {
			return nil, nil, fmt.Errorf("policy config[%d] (id=%q, provider=%q): invalid parameters: %w", i, pc.ID, pc.Provider, err)
		}

		instance, err := factory.New(ctx, pc.Parameters, deps)
		if err != nil {
			return nil, nil, fmt.Errorf("policy config[%d] (id=%q, provider=%q): construction failed: %w", i, pc.ID, pc.Provider, err)
		}

		id, err := policy.ParseIdentifier(pc.Provider)
		if err != nil {
			return nil, nil, fmt.Errorf("policy config[%d] (id=%q): %w", i, pc.ID, err)
		}
		rtr.Register(id.AdminBasePath(), instance.RegisterRoutes())

		if instance.ProcessesRequests() {
			processors = append(processors, instance)
		}
	}

	return chain.New(processors), rtr, nil
}
