package planner

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/loomworks/loom/internal/domain/tool"
	"github.com/loomworks/loom/internal/domain/workflow"
)

var (
	quotedTextPattern = regexp.MustCompile(`["']([^"']+)["']`)
	mathExprPattern   = regexp.MustCompile(`[0-9][0-9+\-*/(). ]*[0-9)]|[0-9]`)
)

// heuristicPlan builds a single-step plan from keyword matching. It is the
// mock backend's strategy and the fallback when an LLM returns garbage.
// Only tools actually present in the registry are chosen.
func heuristicPlan(prompt string, reg *tool.Registry) *workflow.Plan {
	lower := strings.ToLower(prompt)
	subject := extractSubject(prompt)

	var node workflow.PlanNode
	switch {
	case reg.Has("math_eval") && looksLikeMath(prompt):
		expr := mathExprPattern.FindString(prompt)
		if expr == "" {
			expr = subject
		}
		node = workflow.PlanNode{
			ID:   "step-1",
			Type: workflow.NodeTypeTool,
			Tool: "math_eval",
			Args: map[string]any{"expr": strings.TrimSpace(expr)},
		}
	case reg.Has("text_upper") && strings.Contains(lower, "upper"):
		node = textNode("text_upper", subject)
	case reg.Has("text_lower") && strings.Contains(lower, "lower"):
		node = textNode("text_lower", subject)
	case reg.Has("count_characters") && (strings.Contains(lower, "count") || strings.Contains(lower, "character") || strings.Contains(lower, "length")):
		node = textNode("count_characters", subject)
	default:
		// No keyword matched: hand the whole prompt to a tool that takes
		// free text. A registry with no such tool yields no plan.
		name, ok := firstTextTool(reg)
		if !ok {
			return nil
		}
		node = textNode(name, subject)
	}

	return &workflow.Plan{
		WorkflowID: uuid.NewString(),
		Name:       "heuristic-plan",
		Nodes:      []workflow.PlanNode{node},
	}
}

// firstTextTool returns the first registered tool whose schema declares a
// "text" parameter, in registration order.
func firstTextTool(reg *tool.Registry) (string, bool) {
	for _, s := range reg.Schemas() {
		props, _ := s.Parameters["properties"].(map[string]any)
		if _, ok := props["text"]; ok {
			return s.Name, true
		}
	}
	return "", false
}

func textNode(toolName, text string) workflow.PlanNode {
	return workflow.PlanNode{
		ID:   "step-1",
		Type: workflow.NodeTypeTool,
		Tool: toolName,
		Args: map[string]any{"text": text},
	}
}

// extractSubject prefers quoted text in the prompt; otherwise the whole
// prompt is the subject.
func extractSubject(prompt string) string {
	if m := quotedTextPattern.FindStringSubmatch(prompt); m != nil {
		return m[1]
	}
	return strings.TrimSpace(prompt)
}

func looksLikeMath(prompt string) bool {
	hasDigit := strings.ContainsAny(prompt, "0123456789")
	hasOp := strings.ContainsAny(prompt, "+-*/")
	return hasDigit && hasOp
}
