package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loomworks/loom/internal/api/ctxkeys"
	"github.com/loomworks/loom/internal/domain/planner"
	"github.com/loomworks/loom/internal/domain/tool"
	"github.com/loomworks/loom/internal/domain/workflow"
)

func TestStatusForRunError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unknown provider", planner.ErrUnknownProvider, http.StatusBadRequest},
		{"duplicate node id", workflow.ErrDuplicateNodeID, http.StatusUnprocessableEntity},
		{"unknown dependency", workflow.ErrUnknownDependency, http.StatusUnprocessableEntity},
		{"cyclic plan", workflow.ErrCyclicPlan, http.StatusUnprocessableEntity},
		{"malformed node", workflow.ErrMalformedNode, http.StatusUnprocessableEntity},
		{"unknown tool", workflow.ErrUnknownTool, http.StatusUnprocessableEntity},
		{"bad args", tool.ErrBadArgs, http.StatusUnprocessableEntity},
		{"depth exceeded", workflow.ErrDelegationDepthExceeded, http.StatusUnprocessableEntity},
		{"internal cycle", workflow.ErrInternalCycle, http.StatusInternalServerError},
		{"unresolved reference", workflow.ErrUnresolvedReference, http.StatusInternalServerError},
		{"handler failure", errors.New("tool blew up"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// Errors arrive wrapped from the planner/executor.
			wrapped := errors.Join(errors.New("context"), tc.err)
			if got := statusForRunError(wrapped); got != tc.want {
				t.Fatalf("statusForRunError() = %d; want %d", got, tc.want)
			}
		})
	}
}

func TestParsePaginationParams(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 25, 0},
		{"explicit", "limit=10&offset=5", 10, 5},
		{"limit capped", "limit=5000", 100, 0},
		{"garbage ignored", "limit=lots&offset=-2", 25, 0},
		{"zero limit ignored", "limit=0", 25, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/v1/runs?"+tc.query, nil)
			page := parsePaginationParams(r)
			if page.Limit != tc.wantLimit || page.Offset != tc.wantOffset {
				t.Fatalf("page = %+v; want limit %d offset %d", page, tc.wantLimit, tc.wantOffset)
			}
		})
	}
}

func TestCallerFromContext(t *testing.T) {
	t.Parallel()

	t.Run("full context", func(t *testing.T) {
		t.Parallel()
		ctx := ctxkeys.WithValue(context.Background(), ctxkeys.WorkspaceID, "acme")
		ctx = ctxkeys.WithValue(ctx, ctxkeys.APIKey, "sk-test")
		ctx = ctxkeys.WithValue(ctx, ctxkeys.Depth, "2")

		caller, err := callerFromContext(ctx, 3)
		if err != nil {
			t.Fatalf("callerFromContext() error = %v", err)
		}
		want := tool.Caller{Workspace: "acme", APIKey: "sk-test", Depth: 2, MaxDepth: 3}
		if caller != want {
			t.Fatalf("caller = %+v; want %+v", caller, want)
		}
	})

	t.Run("missing workspace", func(t *testing.T) {
		t.Parallel()
		if _, err := callerFromContext(context.Background(), 3); err == nil {
			t.Fatal("callerFromContext() error = nil; want missing workspace")
		}
	})

	t.Run("malformed depth defaults to zero", func(t *testing.T) {
		t.Parallel()
		ctx := ctxkeys.WithValue(context.Background(), ctxkeys.WorkspaceID, "acme")
		ctx = ctxkeys.WithValue(ctx, ctxkeys.Depth, "deep")

		caller, err := callerFromContext(ctx, 3)
		if err != nil {
			t.Fatalf("callerFromContext() error = %v", err)
		}
		if caller.Depth != 0 {
			t.Fatalf("depth = %d; want 0", caller.Depth)
		}
	})
}
