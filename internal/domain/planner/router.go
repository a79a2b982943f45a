package planner

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownProvider is returned by Route for an unregistered provider name.
var ErrUnknownProvider = errors.New("unknown planner provider")

// Router selects a Planner by provider name ("mock", "ollama", "openai").
// An empty name routes to the default.
type Router struct {
	mu          sync.RWMutex
	planners    map[string]Planner
	defaultName string
}

// NewRouter creates an empty router with a default provider name.
func NewRouter(defaultName string) *Router {
	return &Router{
		planners:    make(map[string]Planner),
		defaultName: defaultName,
	}
}

// Register adds a planner under name. Re-registration overwrites.
func (r *Router) Register(name string, p Planner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.planners[name] = p
}

// Route returns the planner for name, or the default planner for "".
func (r *Router) Route(name string) (Planner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.defaultName
	}
	p, ok := r.planners[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}
