// Package workflow implements the plan document, its validation, the
// topological scheduler, argument resolution, and the executor that runs a
// plan node by node.
package workflow

// Node types. A tool node invokes a registered tool; an agent node delegates
// its args to a named sub-agent, which plans and executes its own workflow.
const (
	NodeTypeTool  = "tool"
	NodeTypeAgent = "agent"
)

// Node statuses, reported per step.
const (
	NodeStatusPending     = "pending"
	NodeStatusResolving   = "resolving"
	NodeStatusDispatching = "dispatching"
	NodeStatusCompleted   = "completed"
	NodeStatusFailed      = "failed"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// PlanNode is one step of a plan. Tool carries the target name for both node
// types; Agent is an accepted alias some planners emit for agent nodes.
type PlanNode struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Tool      string         `json:"tool,omitempty"`
	Agent     string         `json:"agent,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
	DependsOn []string       `json:"depends_on,omitempty"`
}

// Target returns the node's dispatch target: the tool name for tool nodes,
// the agent name for agent nodes (honoring the alias field).
func (n *PlanNode) Target() string {
	if n.Tool != "" {
		return n.Tool
	}
	return n.Agent
}

// Plan is a workflow document: a DAG of nodes executed in dependency order.
type Plan struct {
	WorkflowID string     `json:"workflow_id"`
	Name       string     `json:"name"`
	Nodes      []PlanNode `json:"nodes"`
}

// NodeByID returns the node with the given id, or nil. Assumes the plan has
// passed Validate (unique ids).
func (p *Plan) NodeByID(id string) *PlanNode {
	for i := range p.Nodes {
		if p.Nodes[i].ID == id {
			return &p.Nodes[i]
		}
	}
	return nil
}
