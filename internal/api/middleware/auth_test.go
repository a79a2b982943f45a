package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loomworks/loom/internal/api/ctxkeys"
	pkgauth "github.com/loomworks/loom/pkg/auth"
)

// echoHandler reports what the middleware injected into context.
func echoHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		out := map[string]any{
			"workspace": ctx.Value(ctxkeys.WorkspaceID),
			"depth":     ctx.Value(ctxkeys.Depth),
		}
		if err := json.NewEncoder(w).Encode(out); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
}

func doAuth(t *testing.T, apiKeyHash string, decorate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/tools", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	AuthMiddleware(apiKeyHash)(echoHandler(t)).ServeHTTP(rec, req)
	return rec
}

func decodeEcho(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestAuthMiddleware_NoCredentials(t *testing.T) {
	t.Parallel()

	rec := doAuth(t, "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q; want application/json", ct)
	}
}

func TestAuthMiddleware_APIKey(t *testing.T) {
	t.Parallel()

	hash, err := pkgauth.HashAPIKey("sk-test")
	if err != nil {
		t.Fatalf("HashAPIKey() error = %v", err)
	}

	t.Run("valid key", func(t *testing.T) {
		t.Parallel()
		rec := doAuth(t, hash, func(r *http.Request) {
			r.Header.Set(APIKeyHeader, "sk-test")
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		out := decodeEcho(t, rec)
		if out["workspace"] != "default" {
			t.Fatalf("workspace = %v; want default", out["workspace"])
		}
		if out["depth"] != "0" {
			t.Fatalf("depth = %v; want 0 without header", out["depth"])
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		rec := doAuth(t, hash, func(r *http.Request) {
			r.Header.Set(APIKeyHeader, "sk-wrong")
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d; want 401", rec.Code)
		}
	})

	t.Run("key auth disabled when no hash configured", func(t *testing.T) {
		t.Parallel()
		rec := doAuth(t, "", func(r *http.Request) {
			r.Header.Set(APIKeyHeader, "sk-test")
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d; want 401 with key auth disabled", rec.Code)
		}
	})
}

func TestAuthMiddleware_JWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "mw-test-secret")

	token, err := pkgauth.GenerateJWT("acme", "key-1")
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	rec := doAuth(t, "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if out := decodeEcho(t, rec); out["workspace"] != "acme" {
		t.Fatalf("workspace = %v; want acme from claims", out["workspace"])
	}

	t.Run("tampered token", func(t *testing.T) {
		rec := doAuth(t, "", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token+"x")
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d; want 401", rec.Code)
		}
	})
}

func TestAuthMiddleware_DepthHeader(t *testing.T) {
	t.Parallel()

	hash, err := pkgauth.HashAPIKey("sk-test")
	if err != nil {
		t.Fatalf("HashAPIKey() error = %v", err)
	}

	cases := []struct {
		name  string
		value string
		want  string
	}{
		{"valid depth", "2", "2"},
		{"missing", "", "0"},
		{"malformed", "deep", "0"},
		{"negative clamped", "-3", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := doAuth(t, hash, func(r *http.Request) {
				r.Header.Set(APIKeyHeader, "sk-test")
				if tc.value != "" {
					r.Header.Set(DepthHeader, tc.value)
				}
			})
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d; want 200", rec.Code)
			}
			if out := decodeEcho(t, rec); out["depth"] != tc.want {
				t.Fatalf("depth = %v; want %s", out["depth"], tc.want)
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"normal", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"missing", "", ""},
		{"wrong scheme", "Basic dXNlcg==", ""},
		{"lowercase scheme", "bearer abc", ""},
		{"empty token", "Bearer ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			if got := extractBearerToken(r); got != tc.want {
				t.Fatalf("extractBearerToken() = %q; want %q", got, tc.want)
			}
		})
	}
}
