package tool

import (
	"errors"
	"fmt"
	"sync"
)

// Registration failures. Absence of a tool is not an error — Get reports it
// with a bool so callers can map it to their own not-found semantics.
var (
	ErrEmptyName  = errors.New("tool name is empty")
	ErrNilHandler = errors.New("tool handler is nil")
)

// ErrBadArgs marks an invocation failure caused by the argument shape, as
// opposed to the handler failing while doing its work. The HTTP boundary
// maps it to a client error.
var ErrBadArgs = errors.New("invalid arguments")

// Registry is the process-wide name → tool map. Safe for concurrent use:
// registration happens during startup and occasionally at runtime (MCP
// imports), reads happen on every workflow step.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Descriptor
	order []string // registration order, for stable Schemas output
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Descriptor)}
}

// Register adds d under d.Name. Re-registering a name overwrites the
// previous descriptor and keeps its original position in Schemas.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return ErrEmptyName
	}
	if d.Handler == nil {
		return fmt.Errorf("%w: %q", ErrNilHandler, d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[d.Name]; !exists {
		r.order = append(r.order, d.Name)
	}
	r.tools[d.Name] = d
	return nil
}

// Get returns the descriptor for name. ok is false when name is unknown.
func (r *Registry) Get(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.tools[name]
	return d, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Schemas returns every registered tool's schema in registration order.
// The planner embeds this list in its prompt; the HTTP boundary serves it.
func (r *Registry) Schemas() []Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Schema, 0, len(r.order))
	for _, name := range r.order {
		d := r.tools[name]
		out = append(out, Schema{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
		})
	}
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
