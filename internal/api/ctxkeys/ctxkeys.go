// Package ctxkeys holds the shared context keys for the API layer.
// Extracted to a leaf package to avoid import cycles between api and api/handlers.
package ctxkeys

import "context"

// Key is the unexported named type for all API context keys.
// Using a named type avoids collisions with string keys from other packages
// at runtime (context.Value compares both type and value).
type Key string

const (
	// WorkspaceID is the context key for the active workspace.
	// Injected by AuthMiddleware from JWT claims (or "default" for API-key
	// callers), read by all handlers.
	WorkspaceID Key = "workspace_id"

	// APIKey is the context key for the caller's raw credential. Forwarded
	// into the run's caller context so opted-in tools and delegated
	// sub-runs can authenticate onward.
	APIKey Key = "api_key"

	// Depth is the context key for the delegation depth a request arrived
	// with (X-Agent-Depth header, "0" for direct callers).
	Depth Key = "agent_depth"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}
