package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/loomworks/loom/internal/domain/tool"
	"github.com/loomworks/loom/internal/domain/workflow"
	"github.com/loomworks/loom/internal/infra/llm"
)

const plannerSystemPrompt = `You are a workflow planner. Given a user request and a list of available
tools, produce a JSON plan and nothing else.

The plan format:
{
  "workflow_id": "short-id",
  "name": "short description",
  "nodes": [
    {"id": "step-1", "type": "tool", "tool": "<tool name>", "args": {...}, "depends_on": []}
  ]
}

Rules:
- "type" is "tool" for tool calls or "agent" to delegate to a sub-agent.
- Only use tools from the provided list, with their declared parameters.
- A node may reference an earlier node's output with "${step-id}" or a field
  of it with "${step-id.field}" as an argument value.
- "depends_on" lists the ids of nodes whose output the node consumes.
- Keep plans minimal: no nodes the request does not need.`

// LLMPlanner asks a chat model for a plan, embedding the registry's tool
// schemas in the prompt. Model output goes through JSON extraction and plan
// hygiene; if nothing usable survives, the heuristic fallback takes over so
// a flaky model never produces a hard planning failure.
type LLMPlanner struct {
	provider llm.Provider
	registry *tool.Registry
}

// NewLLMPlanner creates an LLM-backed planner over a chat provider.
func NewLLMPlanner(provider llm.Provider, registry *tool.Registry) *LLMPlanner {
	return &LLMPlanner{provider: provider, registry: registry}
}

// Plan implements Planner.
func (l *LLMPlanner) Plan(ctx context.Context, prompt string) (*workflow.Plan, error) {
	schemas, err := json.MarshalIndent(l.registry.Schemas(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("llm planner: encode schemas: %w", err)
	}

	resp, err := l.provider.ChatCompletion(ctx, llm.ChatRequest{
		Messages: []llm.ChatMessage{
			{Role: "system", Content: plannerSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Available tools:\n%s\n\nRequest: %s", schemas, prompt)},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("llm planner: %w", err)
	}

	plan := l.decodePlan(resp.Content, prompt)
	if plan == nil {
		plan = heuristicPlan(prompt, l.registry)
		if plan == nil {
			return nil, fmt.Errorf("llm planner: unusable model output and no fallback tool")
		}
	}
	return plan, nil
}

// decodePlan extracts and sanitizes a plan from raw model output. Returns
// nil when nothing usable survives.
func (l *LLMPlanner) decodePlan(raw, prompt string) *workflow.Plan {
	blob, ok := extractJSON(raw)
	if !ok {
		return nil
	}
	var p workflow.Plan
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return nil
	}
	return l.sanitize(&p, prompt)
}

// extractJSON pulls the plan JSON out of model output: a fenced ```json
// block if present, otherwise the first balanced {...} blob.
func extractJSON(raw string) (string, bool) {
	if idx := strings.Index(raw, "```json"); idx >= 0 {
		rest := raw[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end]), true
		}
	}

	start := strings.Index(raw, "{")
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return raw[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// sanitize applies plan hygiene to model output:
//   - empty/duplicate node ids are renamed step-N
//   - empty type defaults to "tool"
//   - tool nodes naming unregistered tools are dropped
//   - dependencies on dropped or unknown ids are dropped
//   - a text-like required parameter left empty is filled from the prompt
//
// Returns nil when no nodes survive.
func (l *LLMPlanner) sanitize(p *workflow.Plan, prompt string) *workflow.Plan {
	if p.WorkflowID == "" {
		p.WorkflowID = uuid.NewString()
	}
	if p.Name == "" {
		p.Name = "llm-plan"
	}

	seen := make(map[string]bool, len(p.Nodes))
	kept := make([]workflow.PlanNode, 0, len(p.Nodes))
	for i := range p.Nodes {
		n := p.Nodes[i]

		if n.Type == "" {
			n.Type = workflow.NodeTypeTool
		}
		if n.Type == workflow.NodeTypeTool && !l.registry.Has(n.Target()) {
			continue
		}
		if n.Target() == "" {
			continue
		}

		if n.ID == "" || seen[n.ID] {
			next := len(kept) + 1
			for seen[fmt.Sprintf("step-%d", next)] {
				next++
			}
			n.ID = fmt.Sprintf("step-%d", next)
		}
		seen[n.ID] = true

		l.autofillText(&n, prompt)
		kept = append(kept, n)
	}

	if len(kept) == 0 {
		return nil
	}

	// Drop dependencies on ids that did not survive.
	ids := make(map[string]bool, len(kept))
	for i := range kept {
		ids[kept[i].ID] = true
	}
	for i := range kept {
		deps := kept[i].DependsOn[:0]
		for _, dep := range kept[i].DependsOn {
			if ids[dep] && dep != kept[i].ID {
				deps = append(deps, dep)
			}
		}
		kept[i].DependsOn = deps
	}

	p.Nodes = kept
	return p
}

// textParamNames are the argument names treated as "the text input" when a
// model forgets to fill one in.
var textParamNames = []string{"text", "input", "prompt", "content", "expr"}

func (l *LLMPlanner) autofillText(n *workflow.PlanNode, prompt string) {
	if n.Type != workflow.NodeTypeTool {
		return
	}
	desc, ok := l.registry.Get(n.Target())
	if !ok {
		return
	}
	required, _ := desc.Parameters["required"].([]any)
	for _, req := range required {
		name, _ := req.(string)
		if name == "" || !isTextParam(name) {
			continue
		}
		if n.Args == nil {
			n.Args = make(map[string]any)
		}
		if _, present := n.Args[name]; !present {
			n.Args[name] = extractSubject(prompt)
		}
	}
}

func isTextParam(name string) bool {
	for _, t := range textParamNames {
		if name == t {
			return true
		}
	}
	return false
}
