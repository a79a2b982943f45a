// Tool listing and direct invocation endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loomworks/loom/internal/domain/tool"
)

// ToolHandler serves GET /v1/tools and POST /v1/tools/{name}.
type ToolHandler struct {
	registry *tool.Registry
	maxDepth int
}

// NewToolHandler creates the handler.
func NewToolHandler(registry *tool.Registry, maxDepth int) *ToolHandler {
	return &ToolHandler{registry: registry, maxDepth: maxDepth}
}

// ListTools returns every registered tool's schema.
// GET /v1/tools
func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": h.registry.Schemas()})
}

// ExecuteTool runs one tool by name with the request body as args.
// POST /v1/tools/{name}
//
// Unknown tool → 404. Malformed body or argument-shape mismatch → 4xx.
// Handler failure while doing its work → 500.
func (h *ToolHandler) ExecuteTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	desc, ok := h.registry.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "tool not found: "+name)
		return
	}

	// An empty body means no args; anything else must be a JSON object.
	args := make(map[string]any)
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	ctx := r.Context()
	if desc.AcceptsCaller {
		caller, err := callerFromContext(ctx, h.maxDepth)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		ctx = tool.WithCaller(ctx, caller)
	}

	output, err := desc.Handler.Invoke(ctx, args)
	if err != nil {
		if errors.Is(err, tool.ErrBadArgs) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tool": name, "output": output})
}
