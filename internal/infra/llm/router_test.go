package llm

import (
	"context"
	"errors"
	"sort"
	"testing"
)

type stubProvider struct {
	name string
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) ChatCompletion(_ context.Context, _ ChatRequest) (*ChatResponse, error) {
	return &ChatResponse{Content: "stub", Model: s.name}, nil
}

func (s *stubProvider) HealthCheck(_ context.Context) error { return nil }

func TestRouter_Route(t *testing.T) {
	t.Parallel()

	r := NewRouter("ollama")
	r.Register(&stubProvider{name: "ollama"})
	r.Register(&stubProvider{name: "openai"})

	t.Run("by name", func(t *testing.T) {
		t.Parallel()
		p, err := r.Route("openai")
		if err != nil {
			t.Fatalf("Route(openai) error = %v", err)
		}
		if p.Name() != "openai" {
			t.Fatalf("Name() = %q; want openai", p.Name())
		}
	})

	t.Run("empty name routes default", func(t *testing.T) {
		t.Parallel()
		p, err := r.Route("")
		if err != nil {
			t.Fatalf("Route(\"\") error = %v", err)
		}
		if p.Name() != "ollama" {
			t.Fatalf("Name() = %q; want ollama", p.Name())
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()
		if _, err := r.Route("claude"); !errors.Is(err, ErrUnknownProvider) {
			t.Fatalf("Route(claude) error = %v; want ErrUnknownProvider", err)
		}
	})
}

func TestRouter_UnregisteredDefault(t *testing.T) {
	t.Parallel()

	r := NewRouter("ollama")
	if _, err := r.Route(""); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("Route(\"\") error = %v; want ErrUnknownProvider when default missing", err)
	}
}

func TestRouter_Names(t *testing.T) {
	t.Parallel()

	r := NewRouter("a")
	r.Register(&stubProvider{name: "a"})
	r.Register(&stubProvider{name: "b"})

	names := r.Names()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("Names() = %v; want [a b]", names)
	}
}
