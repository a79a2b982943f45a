package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/loomworks/loom/internal/domain/tool"
	"github.com/loomworks/loom/internal/domain/workflow"
)

// MockPlanner is the deterministic backend: no network, no model. If the
// prompt itself is a plan document, it is decoded and passed through —
// which is how integration tests and the CLI submit explicit plans.
// Otherwise a single-step heuristic plan is built from the prompt.
type MockPlanner struct {
	registry *tool.Registry
}

// NewMockPlanner creates a mock backend over the given registry.
func NewMockPlanner(registry *tool.Registry) *MockPlanner {
	return &MockPlanner{registry: registry}
}

// Plan implements Planner.
func (m *MockPlanner) Plan(_ context.Context, prompt string) (*workflow.Plan, error) {
	trimmed := strings.TrimSpace(prompt)
	if strings.HasPrefix(trimmed, "{") {
		var p workflow.Plan
		if err := json.Unmarshal([]byte(trimmed), &p); err == nil && len(p.Nodes) > 0 {
			return &p, nil
		}
	}

	p := heuristicPlan(prompt, m.registry)
	if p == nil {
		return nil, fmt.Errorf("mock planner: no registered tool can serve the prompt")
	}
	return p, nil
}
