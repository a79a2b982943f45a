// Caller authentication middleware.
// Accepts either "Authorization: Bearer <jwt>" or "X-API-Key: <key>" checked
// against the configured bcrypt hash, and injects workspace + credential +
// delegation depth into the request context.
package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/loomworks/loom/internal/api/ctxkeys"
	pkgauth "github.com/loomworks/loom/pkg/auth"
)

// DepthHeader carries the delegation depth on agent-to-agent HTTP calls.
// Direct callers omit it (depth 0).
const DepthHeader = "X-Agent-Depth"

// APIKeyHeader carries the shared API key credential.
const APIKeyHeader = "X-API-Key"

// AuthMiddleware validates the caller's credential and injects claims into
// context. apiKeyHash is the bcrypt hash X-API-Key values are checked
// against; empty disables key auth (JWT only).
//
// Flow:
//  1. Bearer JWT present → parse and validate → workspace from claims
//  2. else X-API-Key present and hash configured → verify → workspace "default"
//  3. else → 401
//  4. Inject ctxkeys.WorkspaceID, ctxkeys.APIKey, ctxkeys.Depth
func AuthMiddleware(apiKeyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			workspace, credential, ok := authenticate(r, apiKeyHash)
			if !ok {
				writeUnauthorized(w, "missing or invalid credentials")
				return
			}

			ctx := r.Context()
			ctx = ctxkeys.WithValue(ctx, ctxkeys.WorkspaceID, workspace)
			ctx = ctxkeys.WithValue(ctx, ctxkeys.APIKey, credential)
			ctx = ctxkeys.WithValue(ctx, ctxkeys.Depth, strconv.Itoa(parseDepth(r)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, apiKeyHash string) (workspace, credential string, ok bool) {
	if token := extractBearerToken(r); token != "" {
		claims, err := pkgauth.ParseJWT(token)
		if err != nil {
			return "", "", false
		}
		return claims.Workspace, token, true
	}

	if key := r.Header.Get(APIKeyHeader); key != "" && apiKeyHash != "" {
		if pkgauth.VerifyAPIKey(apiKeyHash, key) {
			return "default", key, true
		}
	}

	return "", "", false
}

// parseDepth reads X-Agent-Depth. Missing or malformed values count as 0;
// the max-depth cap is enforced server-side on every hop regardless.
func parseDepth(r *http.Request) int {
	raw := r.Header.Get(DepthHeader)
	if raw == "" {
		return 0
	}
	depth, err := strconv.Atoi(raw)
	if err != nil || depth < 0 {
		return 0
	}
	return depth
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
// Returns empty string if header is missing, wrong scheme, or token is empty.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	// Must start with "Bearer " (case-sensitive per RFC 7235)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	token := strings.TrimPrefix(header, prefix)
	token = strings.TrimSpace(token)
	return token
}

// writeUnauthorized writes a 401 JSON response.
// Uses consistent format with writeError in handlers package.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
