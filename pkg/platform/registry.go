package platform

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kart-io/publishhub/pkg/logger"
)

// Factory creates an Adapter from a platform configuration.
type Factory func(config any) (Adapter, error)

// Registry manages platform adapters. Factories and configurations are
// registered at startup; instances are created lazily and cached. The
// registry is read-mostly and safe for concurrent use by all workers.
type Registry struct {
	factories map[string]Factory
	instances map[string]Adapter
	configs   map[string]any
	logger    logger.Logger
	mu        sync.RWMutex
}

// NewRegistry creates a new platform registry.
func NewRegistry(log logger.Logger) *Registry {
	if log == nil {
		log = logger.Discard
	}
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]Adapter),
		configs:   make(map[string]any),
		logger:    log,
	}
}

// RegisterFactory registers a platform factory under a name.
func (r *Registry) RegisterFactory(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("platform %s already registered", name)
	}

	r.factories[name] = factory
	r.logger.Info("platform factory registered", "platform", name)
	return nil
}

// Register registers an already constructed adapter. Used for adapters
// with no configuration and for test doubles.
func (r *Registry) Register(adapter Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := adapter.Name()
	if _, exists := r.instances[name]; exists {
		return fmt.Errorf("platform %s already registered", name)
	}

	r.instances[name] = adapter
	r.logger.Info("platform adapter registered", "platform", name)
	return nil
}

// SetConfig sets the configuration for a platform. An existing cached
// instance is dropped so the next Get rebuilds it.
func (r *Registry) SetConfig(name string, config any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.configs[name] = config
	delete(r.instances, name)
}

// Get returns the adapter for a platform, creating it from its factory on
// first use.
func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	if instance, exists := r.instances[name]; exists {
		r.mu.RUnlock()
		return instance, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if instance, exists := r.instances[name]; exists {
		return instance, nil
	}

	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("platform %s not registered", name)
	}

	config := r.configs[name]
	instance, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform %s: %w", name, err)
	}

	r.instances[name] = instance
	r.logger.Info("platform adapter created", "platform", name)
	return instance, nil
}

// Has reports whether a platform is known to the registry.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.instances[name]; ok {
		return true
	}
	_, ok := r.factories[name]
	return ok
}

// List returns the sorted names of all known platforms.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.factories)+len(r.instances))
	for name := range r.factories {
		seen[name] = struct{}{}
	}
	for name := range r.instances {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Health probes every instantiated adapter. Adapters that do not
// implement HealthChecker report nil.
func (r *Registry) Health(ctx context.Context) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make(map[string]error, len(r.instances))
	for name, instance := range r.instances {
		if checker, ok := instance.(HealthChecker); ok {
			health[name] = checker.IsHealthy(ctx)
		} else {
			health[name] = nil
		}
	}
	return health
}

// Capabilities returns the capability descriptor for a platform.
func (r *Registry) Capabilities(name string) (Capability, error) {
	adapter, err := r.Get(name)
	if err != nil {
		return Capability{}, err
	}
	return adapter.Capabilities(), nil
}
