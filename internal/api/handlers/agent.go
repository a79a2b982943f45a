// Agent run endpoint: plan a prompt, execute the workflow, return or stream
// the result.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/loomworks/loom/internal/domain/planner"
	"github.com/loomworks/loom/internal/domain/run"
	"github.com/loomworks/loom/internal/domain/tool"
	"github.com/loomworks/loom/internal/domain/workflow"
	"github.com/loomworks/loom/internal/infra/eventbus"
)

// AgentRunHandler serves POST /v1/agents/run.
type AgentRunHandler struct {
	planners *planner.Router
	exec     *workflow.Executor
	store    *run.Store
	bus      *eventbus.Bus
	maxDepth int
}

// NewAgentRunHandler creates the handler.
func NewAgentRunHandler(planners *planner.Router, exec *workflow.Executor, store *run.Store, bus *eventbus.Bus, maxDepth int) *AgentRunHandler {
	return &AgentRunHandler{
		planners: planners,
		exec:     exec,
		store:    store,
		bus:      bus,
		maxDepth: maxDepth,
	}
}

// AgentRunRequest is the POST /v1/agents/run body.
type AgentRunRequest struct {
	Prompt   string `json:"prompt"`
	Provider string `json:"provider,omitempty"`
	Stream   bool   `json:"stream,omitempty"`
}

// AgentRunResponse is the non-streaming response body.
type AgentRunResponse struct {
	RunID   string                `json:"run_id"`
	Status  string                `json:"status"`
	Plan    *workflow.Plan        `json:"plan"`
	Results map[string]any        `json:"results,omitempty"`
	Steps   []workflow.StepResult `json:"steps,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// RunAgent plans and executes a prompt.
// POST /v1/agents/run
func (h *AgentRunHandler) RunAgent(w http.ResponseWriter, r *http.Request) {
	var req AgentRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	caller, err := callerFromContext(r.Context(), h.maxDepth)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	providerLabel := req.Provider
	if providerLabel == "" {
		providerLabel = "default"
	}

	runID := uuid.NewString()
	if err := h.store.Create(r.Context(), runID, caller.Workspace, req.Prompt, providerLabel); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record run")
		return
	}

	pl, err := h.planners.Route(req.Provider)
	if err != nil {
		h.store.Fail(r.Context(), runID, "", err.Error()) //nolint:errcheck
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := pl.Plan(r.Context(), req.Prompt)
	if err != nil {
		h.store.Fail(r.Context(), runID, "", err.Error()) //nolint:errcheck
		writeError(w, statusForRunError(err), "planning failed: "+err.Error())
		return
	}
	planJSON, _ := json.Marshal(plan) //nolint:errcheck

	if req.Stream {
		h.streamRun(w, r, runID, plan, string(planJSON), caller)
		return
	}

	report, execErr := h.exec.Execute(r.Context(), runID, plan, caller)
	h.persist(r, runID, string(planJSON), report, execErr)

	if execErr != nil {
		resp := AgentRunResponse{
			RunID:  runID,
			Status: workflow.RunStatusFailed,
			Plan:   plan,
			Error:  execErr.Error(),
		}
		if report != nil {
			resp.Steps = report.Steps
			resp.Results = report.Results
		}
		writeJSON(w, statusForRunError(execErr), resp)
		return
	}

	writeJSON(w, http.StatusOK, AgentRunResponse{
		RunID:   runID,
		Status:  report.Status,
		Plan:    plan,
		Results: report.Results,
		Steps:   report.Steps,
	})
}

// streamRun executes the plan while relaying step events as SSE. The
// subscription is opened before execution starts so no event can be missed.
// Wire shape: one "step" event per completed/failed node in completion
// order, then a single final "result" event with the aggregate.
func (h *AgentRunHandler) streamRun(w http.ResponseWriter, r *http.Request, runID string, plan *workflow.Plan, planJSON string, caller tool.Caller) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	topic := workflow.RunTopic(runID)
	events := h.bus.Subscribe(topic)
	defer h.bus.Unsubscribe(topic, events)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	type outcome struct {
		report *workflow.Report
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		report, err := h.exec.Execute(r.Context(), runID, plan, caller)
		done <- outcome{report: report, err: err}
	}()

	for {
		select {
		case ev := <-events:
			writeSSE(w, flusher, "step", ev.Payload)
		case out := <-done:
			// Publish is synchronous, so every step event is already
			// buffered; drain before the final frame.
			for {
				select {
				case ev := <-events:
					writeSSE(w, flusher, "step", ev.Payload)
					continue
				default:
				}
				break
			}

			h.persist(r, runID, planJSON, out.report, out.err)
			final := AgentRunResponse{RunID: runID, Plan: plan}
			if out.err != nil {
				final.Status = workflow.RunStatusFailed
				final.Error = out.err.Error()
			}
			if out.report != nil {
				if out.err == nil {
					final.Status = out.report.Status
				}
				final.Results = out.report.Results
				final.Steps = out.report.Steps
			}
			writeSSE(w, flusher, "result", final)
			return
		case <-r.Context().Done():
			return
		}
	}
}

// persist records the run outcome; persistence failures do not affect the
// response.
func (h *AgentRunHandler) persist(r *http.Request, runID, planJSON string, report *workflow.Report, execErr error) {
	ctx := r.Context()
	if execErr != nil {
		h.store.Fail(ctx, runID, planJSON, execErr.Error()) //nolint:errcheck
		return
	}
	resultJSON := ""
	if report != nil {
		if raw, err := json.Marshal(report.Results); err == nil {
			resultJSON = string(raw)
		}
	}
	h.store.Complete(ctx, runID, planJSON, resultJSON) //nolint:errcheck
}

// writeSSE emits one server-sent event with a JSON payload.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data) //nolint:errcheck
	flusher.Flush()
}
