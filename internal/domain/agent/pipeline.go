package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/loomworks/loom/internal/domain/planner"
	"github.com/loomworks/loom/internal/domain/tool"
	"github.com/loomworks/loom/internal/domain/workflow"
)

// Pipeline turns a delegated prompt into a full sub-run: plan it with the
// default planner, execute it, and hand back the aggregate. It implements
// workflow.Delegator, closing the loop that lets plans contain agent nodes.
type Pipeline struct {
	planners *planner.Router
	exec     *workflow.Executor
	catalog  *Catalog

	// maxDepth seeds the depth limit when a delegation arrives without a
	// caller context (direct tool invocation).
	maxDepth int
}

// NewPipeline wires the delegation pipeline and binds it into the executor.
func NewPipeline(planners *planner.Router, exec *workflow.Executor, catalog *Catalog, maxDepth int) *Pipeline {
	p := &Pipeline{
		planners: planners,
		exec:     exec,
		catalog:  catalog,
		maxDepth: maxDepth,
	}
	exec.BindDelegator(p)
	return p
}

// Catalog exposes the persona catalog for the router helpers.
func (p *Pipeline) Catalog() *Catalog { return p.catalog }

// Delegate implements workflow.Delegator. The caller passed in is the one
// the sub-run executes as — depth accounting happens at the call sites
// (executor for agent nodes, helper tools for explicit delegation).
func (p *Pipeline) Delegate(ctx context.Context, agentName string, args map[string]any, caller tool.Caller) (any, error) {
	prompt := promptFromArgs(args)
	if prompt == "" {
		return nil, fmt.Errorf("delegate to %q: args carry no prompt", agentName)
	}

	if persona, ok := p.catalog.Get(agentName); ok && persona.SystemPrompt != "" {
		prompt = persona.SystemPrompt + "\n\n" + prompt
	}

	pl, err := p.planners.Route("")
	if err != nil {
		return nil, fmt.Errorf("delegate to %q: %w", agentName, err)
	}
	plan, err := pl.Plan(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("delegate to %q: plan: %w", agentName, err)
	}

	subRunID := uuid.NewString()
	report, err := p.exec.Execute(ctx, subRunID, plan, caller)
	if err != nil {
		return nil, fmt.Errorf("delegate to %q: %w", agentName, err)
	}

	return map[string]any{
		"agent":       agentName,
		"workflow_id": report.WorkflowID,
		"output":      finalOutput(report),
		"results":     report.Results,
	}, nil
}

// childCaller advances the delegation depth, enforcing the cap. A zero
// MaxDepth falls back to the pipeline default.
func (p *Pipeline) childCaller(c tool.Caller) (tool.Caller, error) {
	if c.MaxDepth == 0 {
		c.MaxDepth = p.maxDepth
	}
	c.Depth++
	if c.MaxDepth > 0 && c.Depth > c.MaxDepth {
		return c, fmt.Errorf("%w: depth %d exceeds max %d",
			workflow.ErrDelegationDepthExceeded, c.Depth, c.MaxDepth)
	}
	return c, nil
}

// promptFromArgs finds the delegated prompt in resolved node args, falling
// back to the JSON form of the args when no text-like key is present.
func promptFromArgs(args map[string]any) string {
	for _, key := range []string{"prompt", "text", "input", "content"} {
		if v, ok := args[key].(string); ok && v != "" {
			return v
		}
	}
	if len(args) == 0 {
		return ""
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return ""
	}
	return string(raw)
}

// finalOutput is the last completed step's output — the conventional "answer"
// of a linear sub-plan.
func finalOutput(report *workflow.Report) any {
	for i := len(report.Steps) - 1; i >= 0; i-- {
		if report.Steps[i].Status == workflow.NodeStatusCompleted {
			return report.Steps[i].Output
		}
	}
	return nil
}
