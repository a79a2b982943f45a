// Run history endpoints.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loomworks/loom/internal/domain/run"
)

// RunHandler serves GET /v1/runs and GET /v1/runs/{id}.
type RunHandler struct {
	store *run.Store
}

// NewRunHandler creates the handler.
func NewRunHandler(store *run.Store) *RunHandler {
	return &RunHandler{store: store}
}

// ListRuns returns the workspace's runs, newest first.
// GET /v1/runs?limit=&offset=
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	workspace, err := getWorkspaceID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	page := parsePaginationParams(r)
	runs, err := h.store.List(r.Context(), workspace, page.Limit, page.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []run.Run{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":   runs,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

// GetRun returns one run by id.
// GET /v1/runs/{id}
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	workspace, err := getWorkspaceID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	rec, err := h.store.Get(r.Context(), workspace, id)
	if err != nil {
		if errors.Is(err, run.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found: "+id)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
