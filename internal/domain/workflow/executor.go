package workflow

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/loomworks/loom/internal/domain/tool"
	"github.com/loomworks/loom/internal/infra/eventbus"
)

// Delegator runs an agent node: it hands the resolved args to a named
// sub-agent which plans and executes its own workflow. Implemented by the
// agent pipeline; declared here so the executor does not import it.
type Delegator interface {
	Delegate(ctx context.Context, agentName string, args map[string]any, caller tool.Caller) (any, error)
}

// StepResult is the recorded outcome of one node.
type StepResult struct {
	NodeID string `json:"node_id"`
	Type   string `json:"type"`
	Target string `json:"target"`
	Status string `json:"status"`
	Output any    `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// StepEvent is published on the run's topic after each node completes or
// fails, in completion order.
type StepEvent struct {
	RunID  string `json:"run_id"`
	NodeID string `json:"node_id"`
	Target string `json:"target"`
	Status string `json:"status"`
	Output any    `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Report aggregates a run: per-step records plus the node-id → output map
// that placeholder resolution read from.
type Report struct {
	WorkflowID string         `json:"workflow_id"`
	Name       string         `json:"name"`
	Status     string         `json:"status"`
	Results    map[string]any `json:"results"`
	Steps      []StepResult   `json:"steps"`
}

// Executor runs validated plans node by node in topological order.
// Execution within one run is sequential; isolation between runs comes from
// each run owning its own results map and the blocking-handler bulkhead.
type Executor struct {
	registry *tool.Registry
	bus      *eventbus.Bus
	delegate Delegator

	// blocking bounds concurrently executing Blocking handlers across all
	// runs so one slow tool cannot absorb every goroutine.
	blocking *semaphore.Weighted
}

// NewExecutor creates an executor. bus may be nil (no step events).
// blockingSlots must be >= 1.
func NewExecutor(registry *tool.Registry, bus *eventbus.Bus, blockingSlots int64) *Executor {
	return &Executor{
		registry: registry,
		bus:      bus,
		blocking: semaphore.NewWeighted(blockingSlots),
	}
}

// BindDelegator wires the agent pipeline in after construction. The pipeline
// needs the executor to run sub-plans, so the dependency is circular and
// resolved with a setter.
func (e *Executor) BindDelegator(d Delegator) {
	e.delegate = d
}

// RunTopic returns the event bus topic step events for runID are published on.
func RunTopic(runID string) string {
	return "run." + runID
}

// Execute validates, orders, and runs a plan. The returned report is always
// populated, even on failure: it records every step up to and including the
// failed one. The error is non-nil when the run did not succeed.
//
// The first failing node aborts the remainder of the run. Caller identity is
// injected only into handlers that opted in via AcceptsCaller.
func (e *Executor) Execute(ctx context.Context, runID string, p *Plan, caller tool.Caller) (*Report, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	order, err := Order(p)
	if err != nil {
		return nil, err
	}

	report := &Report{
		WorkflowID: p.WorkflowID,
		Name:       p.Name,
		Status:     RunStatusRunning,
		Results:    make(map[string]any, len(p.Nodes)),
	}

	for _, id := range order {
		node := p.NodeByID(id)

		step := StepResult{NodeID: node.ID, Type: node.Type, Target: node.Target(), Status: NodeStatusResolving}
		args, resolveErr := ResolveArgs(node.Args, report.Results)
		if resolveErr != nil {
			e.failStep(runID, report, step, resolveErr)
			return report, fmt.Errorf("node %q: %w", node.ID, resolveErr)
		}

		step.Status = NodeStatusDispatching
		output, dispatchErr := e.dispatch(ctx, node, args, caller)
		if dispatchErr != nil {
			e.failStep(runID, report, step, dispatchErr)
			return report, fmt.Errorf("node %q: %w", node.ID, dispatchErr)
		}

		step.Status = NodeStatusCompleted
		step.Output = output
		report.Results[node.ID] = output
		report.Steps = append(report.Steps, step)
		e.publish(runID, StepEvent{
			RunID:  runID,
			NodeID: step.NodeID,
			Target: step.Target,
			Status: step.Status,
			Output: output,
		})
	}

	report.Status = RunStatusSucceeded
	return report, nil
}

// dispatch runs one node's handler or delegation.
func (e *Executor) dispatch(ctx context.Context, node *PlanNode, args map[string]any, caller tool.Caller) (any, error) {
	if node.Type == NodeTypeAgent {
		return e.dispatchAgent(ctx, node, args, caller)
	}

	desc, ok := e.registry.Get(node.Target())
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, node.Target())
	}

	if desc.AcceptsCaller {
		ctx = tool.WithCaller(ctx, caller)
	}

	if desc.Blocking {
		if err := e.blocking.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("acquire blocking slot: %w", err)
		}
		defer e.blocking.Release(1)
	}

	return desc.Handler.Invoke(ctx, args)
}

// dispatchAgent delegates to a sub-agent with an incremented depth counter.
func (e *Executor) dispatchAgent(ctx context.Context, node *PlanNode, args map[string]any, caller tool.Caller) (any, error) {
	if e.delegate == nil {
		return nil, fmt.Errorf("%w: no delegator bound for agent node %q", ErrUnknownTool, node.ID)
	}

	child := caller
	child.Depth++
	if child.MaxDepth > 0 && child.Depth > child.MaxDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds max %d", ErrDelegationDepthExceeded, child.Depth, child.MaxDepth)
	}

	return e.delegate.Delegate(ctx, node.Target(), args, child)
}

func (e *Executor) failStep(runID string, report *Report, step StepResult, err error) {
	step.Status = NodeStatusFailed
	step.Error = err.Error()
	report.Steps = append(report.Steps, step)
	report.Status = RunStatusFailed
	e.publish(runID, StepEvent{
		RunID:  runID,
		NodeID: step.NodeID,
		Target: step.Target,
		Status: step.Status,
		Error:  step.Error,
	})
}

// publish is nil-safe: an executor without a bus simply skips events.
func (e *Executor) publish(runID string, ev StepEvent) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(RunTopic(runID), ev)
}
