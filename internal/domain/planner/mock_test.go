package planner

import (
	"context"
	"testing"

	"github.com/loomworks/loom/internal/domain/tool"
	"github.com/loomworks/loom/internal/domain/workflow"
)

func testRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	reg := tool.NewRegistry()
	if err := tool.RegisterBuiltins(reg); err != nil {
		t.Fatalf("RegisterBuiltins() error = %v", err)
	}
	return reg
}

func TestMockPlanner_PlanPassthrough(t *testing.T) {
	t.Parallel()

	m := NewMockPlanner(testRegistry(t))
	prompt := `{
		"workflow_id": "wf-explicit",
		"name": "two step",
		"nodes": [
			{"id": "n1", "type": "tool", "tool": "math_eval", "args": {"expr": "2+2"}},
			{"id": "n2", "type": "tool", "tool": "text_upper", "args": {"text": "${n1}"}, "depends_on": ["n1"]}
		]
	}`

	plan, err := m.Plan(context.Background(), prompt)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if plan.WorkflowID != "wf-explicit" {
		t.Fatalf("WorkflowID = %q; want wf-explicit", plan.WorkflowID)
	}
	if len(plan.Nodes) != 2 {
		t.Fatalf("nodes = %d; want 2", len(plan.Nodes))
	}
	if err := workflow.Validate(plan); err != nil {
		t.Fatalf("passthrough plan invalid: %v", err)
	}
}

func TestMockPlanner_HeuristicMath(t *testing.T) {
	t.Parallel()

	m := NewMockPlanner(testRegistry(t))
	plan, err := m.Plan(context.Background(), "what is 12+30?")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(plan.Nodes) != 1 {
		t.Fatalf("nodes = %d; want 1", len(plan.Nodes))
	}
	n := plan.Nodes[0]
	if n.Tool != "math_eval" {
		t.Fatalf("tool = %q; want math_eval", n.Tool)
	}
	if n.Args["expr"] != "12+30" {
		t.Fatalf("expr = %v; want 12+30", n.Args["expr"])
	}
}

func TestMockPlanner_HeuristicFallbackPicksTextTool(t *testing.T) {
	t.Parallel()

	m := NewMockPlanner(testRegistry(t))
	plan, err := m.Plan(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	n := plan.Nodes[0]
	if n.Tool != "text_upper" {
		t.Fatalf("tool = %q; want text_upper (first text-accepting tool)", n.Tool)
	}
	if n.Args["text"] != "hello there" {
		t.Fatalf("text = %v; want the prompt", n.Args["text"])
	}
}

func TestMockPlanner_NoTextToolNoFallback(t *testing.T) {
	t.Parallel()

	reg := tool.NewRegistry()
	err := reg.Register(tool.Descriptor{
		Name: "echo_number",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"value": map[string]any{"type": "number"},
			},
		},
		Handler: tool.HandlerFunc(func(_ context.Context, args map[string]any) (any, error) {
			return args["value"], nil
		}),
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	m := NewMockPlanner(reg)
	if _, err := m.Plan(context.Background(), "hello there"); err == nil {
		t.Fatal("Plan() error = nil; want failure when no tool accepts text")
	}
}

func TestMockPlanner_HeuristicTextTools(t *testing.T) {
	t.Parallel()

	m := NewMockPlanner(testRegistry(t))

	cases := []struct {
		prompt   string
		wantTool string
		wantText string
	}{
		{`make "hello world" uppercase`, "text_upper", "hello world"},
		{`lowercase "SHOUTING"`, "text_lower", "SHOUTING"},
		{`count the characters in "abc"`, "count_characters", "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.wantTool, func(t *testing.T) {
			t.Parallel()
			plan, err := m.Plan(context.Background(), tc.prompt)
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			n := plan.Nodes[0]
			if n.Tool != tc.wantTool {
				t.Fatalf("tool = %q; want %q", n.Tool, tc.wantTool)
			}
			if n.Args["text"] != tc.wantText {
				t.Fatalf("text = %v; want %q", n.Args["text"], tc.wantText)
			}
		})
	}
}

func TestMockPlanner_EmptyRegistry(t *testing.T) {
	t.Parallel()

	m := NewMockPlanner(tool.NewRegistry())
	if _, err := m.Plan(context.Background(), "anything"); err == nil {
		t.Fatal("Plan() error = nil; want no-tools failure")
	}
}
