package llm

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownProvider is returned by Route for a name no provider registered.
var ErrUnknownProvider = errors.New("unknown llm provider")

// Router selects a Provider by name. An empty name routes to the default.
type Router struct {
	mu          sync.RWMutex
	providers   map[string]Provider
	defaultName string
}

// NewRouter creates an empty router. defaultName is used when Route is
// called with "".
func NewRouter(defaultName string) *Router {
	return &Router{
		providers:   make(map[string]Provider),
		defaultName: defaultName,
	}
}

// Register adds a provider under its own Name. Re-registration overwrites.
func (r *Router) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Route returns the provider for name, or the default provider for "".
func (r *Router) Route(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.defaultName
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names returns the registered provider names (unordered).
func (r *Router) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
