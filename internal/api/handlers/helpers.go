// Handler helper functions and context access.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/loomworks/loom/internal/api/ctxkeys"
	"github.com/loomworks/loom/internal/domain/planner"
	"github.com/loomworks/loom/internal/domain/tool"
	"github.com/loomworks/loom/internal/domain/workflow"
)

// paginationParams holds parsed limit and offset values.
type paginationParams struct {
	Limit  int
	Offset int
}

const (
	defaultPaginationLimit = 25
	maxPaginationLimit     = 100
)

// getWorkspaceID retrieves workspace_id from context.
// Uses ctxkeys.WorkspaceID — same type+value as AuthMiddleware injection.
func getWorkspaceID(ctx context.Context) (string, error) {
	wsID, ok := ctx.Value(ctxkeys.WorkspaceID).(string)
	if !ok || wsID == "" {
		return "", fmt.Errorf("workspace_id not found in context")
	}
	return wsID, nil
}

// callerFromContext assembles the run's caller identity from what the auth
// middleware injected. maxDepth is the configured delegation cap.
func callerFromContext(ctx context.Context, maxDepth int) (tool.Caller, error) {
	workspace, err := getWorkspaceID(ctx)
	if err != nil {
		return tool.Caller{}, err
	}
	apiKey, _ := ctx.Value(ctxkeys.APIKey).(string)
	depth := 0
	if raw, ok := ctx.Value(ctxkeys.Depth).(string); ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			depth = parsed
		}
	}
	return tool.Caller{
		Workspace: workspace,
		APIKey:    apiKey,
		Depth:     depth,
		MaxDepth:  maxDepth,
	}, nil
}

// parsePaginationParams extracts and validates limit/offset from URL query params.
func parsePaginationParams(r *http.Request) paginationParams {
	limit := defaultPaginationLimit
	offset := 0

	if lim, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && lim > 0 {
		if lim > maxPaginationLimit {
			lim = maxPaginationLimit
		}
		limit = lim
	}

	if off, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && off >= 0 {
		offset = off
	}

	return paginationParams{Limit: limit, Offset: offset}
}

// writeError writes a JSON error response with the given status.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload) //nolint:errcheck
}

// statusForRunError maps a planning/execution error to an HTTP status.
// Structural and dispatch problems are the caller's fault (4xx); invariant
// breaches and handler failures are ours (5xx).
func statusForRunError(err error) int {
	switch {
	case errors.Is(err, planner.ErrUnknownProvider):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrDuplicateNodeID),
		errors.Is(err, workflow.ErrUnknownDependency),
		errors.Is(err, workflow.ErrCyclicPlan),
		errors.Is(err, workflow.ErrMalformedNode),
		errors.Is(err, workflow.ErrUnknownTool),
		errors.Is(err, tool.ErrBadArgs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrDelegationDepthExceeded):
		return http.StatusUnprocessableEntity
	default:
		// includes ErrInternalCycle, ErrUnresolvedReference, handler errors
		return http.StatusInternalServerError
	}
}
