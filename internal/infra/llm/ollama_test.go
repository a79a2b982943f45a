package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProvider_ChatCompletion(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q; want /api/chat", r.URL.Path)
		}
		var body ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Stream {
			t.Error("stream = true; want non-streaming request")
		}
		if body.Model != "llama3.2" {
			t.Errorf("model = %q; want default llama3.2", body.Model)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   body.Model,
			Message: ChatMessage{Role: "assistant", Content: "forty-two"},
			Done:    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3.2")
	resp, err := p.ChatCompletion(context.Background(), ChatRequest{
		Messages: []ChatMessage{{Role: "user", Content: "meaning of life?"}},
	})
	if err != nil {
		t.Fatalf("ChatCompletion() error = %v", err)
	}
	if resp.Content != "forty-two" || resp.Model != "llama3.2" {
		t.Fatalf("resp = %+v; want forty-two from llama3.2", resp)
	}
}

func TestOllamaProvider_ModelOverride(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.Model != "mistral" {
			t.Errorf("model = %q; want per-request mistral", body.Model)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{Model: body.Model, Done: true})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3.2")
	if _, err := p.ChatCompletion(context.Background(), ChatRequest{Model: "mistral"}); err != nil {
		t.Fatalf("ChatCompletion() error = %v", err)
	}
}

func TestOllamaProvider_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3.2")
	if _, err := p.ChatCompletion(context.Background(), ChatRequest{}); err == nil {
		t.Fatal("ChatCompletion() error = nil; want non-200 failure")
	}
}

func TestOllamaProvider_HealthCheck(t *testing.T) {
	t.Parallel()

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		if err := NewOllamaProvider(srv.URL, "m").HealthCheck(context.Background()); err != nil {
			t.Fatalf("HealthCheck() error = %v", err)
		}
	})

	t.Run("down", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		if err := NewOllamaProvider(srv.URL, "m").HealthCheck(context.Background()); err == nil {
			t.Fatal("HealthCheck() error = nil; want failure on 503")
		}
	})
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("short", 200); got != "short" {
		t.Fatalf("truncate(short) = %q", got)
	}
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	if got := truncate(string(long), 200); len(got) != 203 {
		t.Fatalf("len = %d; want 200 + ellipsis", len(got))
	}
}
