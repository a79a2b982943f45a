// Package planner turns a natural-language prompt into a workflow plan.
// Backends sit behind a narrow interface: a deterministic mock for tests and
// local development, and LLM-backed planners for real providers.
package planner

import (
	"context"

	"github.com/loomworks/loom/internal/domain/workflow"
)

// Planner produces an executable plan from a prompt. Implementations must
// return plans that pass workflow.Validate against the live tool registry.
type Planner interface {
	Plan(ctx context.Context, prompt string) (*workflow.Plan, error)
}
