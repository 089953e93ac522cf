package models

import (
	"fmt"
	"sort"
	"sync"
)

// Factory constructs a fresh model instance. Worker processes use the
// registry to instantiate models by name, so each worker owns its own
// instances.
type Factory func() (Model, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a model factory available under the given name.
// Registering the same name twice is a programming error.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("models: duplicate registration for %q", name))
	}
	registry[name] = factory
}

// New instantiates a registered model.
func New(name string) (Model, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("models: no model registered under %q", name)
	}
	return factory()
}

// Registered lists the registered model names in sorted order.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
