// Package tool defines the tool contract and the process-wide registry.
// A tool is a named handler plus a schema descriptor the planner can read.
package tool

import "context"

// Handler executes one tool invocation. Args arrive as decoded JSON
// (map values are string/float64/bool/[]any/map[string]any). The returned
// value must be JSON-encodable.
type Handler interface {
	Invoke(ctx context.Context, args map[string]any) (any, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

// Invoke implements Handler.
func (f HandlerFunc) Invoke(ctx context.Context, args map[string]any) (any, error) {
	return f(ctx, args)
}

// Descriptor is a registered tool: handler plus the metadata exposed to the
// planner and the HTTP tool listing.
type Descriptor struct {
	Name        string
	Description string

	// Parameters is a JSON-schema-shaped description of the args object.
	Parameters map[string]any

	Handler Handler

	// Blocking marks handlers that perform slow synchronous work (network
	// calls, sub-agent delegation). The executor dispatches these through a
	// bounded worker pool so one slow tool cannot stall unrelated runs.
	Blocking bool

	// AcceptsCaller opts the handler into receiving the run's caller
	// identity (workspace, credential, delegation depth) via its context.
	// Handlers that never forward credentials should leave this false.
	AcceptsCaller bool
}

// Schema is the externally consumable description of one tool.
type Schema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}
