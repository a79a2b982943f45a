package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTPHost != "0.0.0.0" || cfg.HTTPPort != 8080 {
		t.Fatalf("listener = %s:%d; want 0.0.0.0:8080", cfg.HTTPHost, cfg.HTTPPort)
	}
	if cfg.DBPath != "loom.db" {
		t.Fatalf("DBPath = %q; want loom.db", cfg.DBPath)
	}
	if cfg.DefaultProvider != "mock" {
		t.Fatalf("DefaultProvider = %q; want mock", cfg.DefaultProvider)
	}
	if cfg.MaxDelegationDepth != 3 {
		t.Fatalf("MaxDelegationDepth = %d; want 3", cfg.MaxDelegationDepth)
	}
	if cfg.BlockingSlots != 8 {
		t.Fatalf("BlockingSlots = %d; want 8", cfg.BlockingSlots)
	}
	if cfg.OpenAIAPIKey != "" || cfg.APIKeyHash != "" {
		t.Fatal("secrets must default to empty")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LOOM_HTTP_HOST", "127.0.0.1")
	t.Setenv("LOOM_HTTP_PORT", "9999")
	t.Setenv("LOOM_DEFAULT_PROVIDER", "ollama")
	t.Setenv("LOOM_MAX_DELEGATION_DEPTH", "5")
	t.Setenv("LOOM_BLOCKING_SLOTS", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9999" {
		t.Fatalf("Addr() = %q; want 127.0.0.1:9999", cfg.Addr())
	}
	if cfg.DefaultProvider != "ollama" {
		t.Fatalf("DefaultProvider = %q; want ollama", cfg.DefaultProvider)
	}
	if cfg.MaxDelegationDepth != 5 || cfg.BlockingSlots != 2 {
		t.Fatalf("depth/slots = %d/%d; want 5/2", cfg.MaxDelegationDepth, cfg.BlockingSlots)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	t.Run("non-numeric port", func(t *testing.T) {
		t.Setenv("LOOM_HTTP_PORT", "eighty")
		if _, err := Load(); err == nil {
			t.Fatal("Load() error = nil; want parse failure")
		}
	})

	t.Run("zero delegation depth", func(t *testing.T) {
		t.Setenv("LOOM_MAX_DELEGATION_DEPTH", "0")
		if _, err := Load(); err == nil {
			t.Fatal("Load() error = nil; want validation failure")
		}
	})

	t.Run("zero blocking slots", func(t *testing.T) {
		t.Setenv("LOOM_BLOCKING_SLOTS", "0")
		if _, err := Load(); err == nil {
			t.Fatal("Load() error = nil; want validation failure")
		}
	})
}
