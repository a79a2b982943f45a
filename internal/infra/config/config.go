// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server needs to start. Values come from the
// environment with local-friendly defaults; only secrets (API key hash,
// OpenAI key, JWT secret) have no default.
type Config struct {
	// HTTP listener.
	HTTPHost string `env:"LOOM_HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort int    `env:"LOOM_HTTP_PORT" envDefault:"8080"`

	// SQLite database path for the run store. ":memory:" for ephemeral runs.
	DBPath string `env:"LOOM_DB_PATH" envDefault:"loom.db"`

	// Planner provider selected when a request does not name one.
	// One of: mock, ollama, openai.
	DefaultProvider string `env:"LOOM_DEFAULT_PROVIDER" envDefault:"mock"`

	// Ollama planner backend.
	OllamaBaseURL string `env:"LOOM_OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	OllamaModel   string `env:"LOOM_OLLAMA_MODEL" envDefault:"llama3.2"`

	// OpenAI planner backend. Provider is only registered when the key is set.
	OpenAIAPIKey string `env:"LOOM_OPENAI_API_KEY"`
	OpenAIModel  string `env:"LOOM_OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// bcrypt hash of the accepted X-API-Key value. Empty disables key auth
	// (JWT remains available).
	APIKeyHash string `env:"LOOM_API_KEY_HASH"`

	// Maximum recursive delegation depth for agent nodes.
	MaxDelegationDepth int `env:"LOOM_MAX_DELEGATION_DEPTH" envDefault:"3"`

	// Concurrent slots for blocking tool handlers.
	BlockingSlots int `env:"LOOM_BLOCKING_SLOTS" envDefault:"8"`

	// Optional YAML files: delegate agent personas and MCP servers to import
	// tools from. Empty path skips the feature.
	AgentCatalogPath string `env:"LOOM_AGENT_CATALOG"`
	MCPServersPath   string `env:"LOOM_MCP_SERVERS"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if cfg.MaxDelegationDepth < 1 {
		return nil, fmt.Errorf("config: LOOM_MAX_DELEGATION_DEPTH must be >= 1, got %d", cfg.MaxDelegationDepth)
	}
	if cfg.BlockingSlots < 1 {
		return nil, fmt.Errorf("config: LOOM_BLOCKING_SLOTS must be >= 1, got %d", cfg.BlockingSlots)
	}
	return &cfg, nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}
