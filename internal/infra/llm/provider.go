// Package llm abstracts chat-completion backends behind a small interface so
// the planner does not care whether text comes from Ollama or OpenAI.
package llm

import "context"

// Provider is a chat-completion backend.
type Provider interface {
	// Name returns the provider's registry key ("ollama", "openai", ...).
	Name() string

	// ChatCompletion sends the full message history and returns the
	// assistant's reply. Implementations must honor ctx cancellation.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error
}
