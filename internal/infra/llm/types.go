package llm

// ChatMessage is one turn of a chat completion conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// ChatRequest is a provider-agnostic chat completion request.
// Model may be empty to use the provider's configured default.
type ChatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

// ChatResponse is the provider-agnostic completion result.
type ChatResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}
