package tool

import "context"

// Caller identifies who initiated a workflow run. It travels with the run —
// never in node args — and reaches only handlers that set AcceptsCaller.
// Depth counts recursive agent delegations; MaxDepth caps them.
type Caller struct {
	Workspace string
	APIKey    string
	Depth     int
	MaxDepth  int
}

type callerCtxKey struct{}

// WithCaller returns a context carrying c.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerCtxKey{}, c)
}

// CallerFrom extracts the caller from ctx. ok is false when no caller was
// attached (direct tool invocation outside a run).
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerCtxKey{}).(Caller)
	return c, ok
}
