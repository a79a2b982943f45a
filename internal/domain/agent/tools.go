package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/loomworks/loom/internal/domain/tool"
)

// RegisterHelperTools installs the delegation, routing, consensus, and
// critic tools. All are thin compositions over the pipeline and the pure
// helpers in this package — no state machine of their own.
func RegisterHelperTools(reg *tool.Registry, pipe *Pipeline) error {
	helpers := []tool.Descriptor{
		{
			Name:          "delegate_agent",
			Description:   "Delegate a prompt to a named sub-agent and return its result.",
			Parameters:    delegateParams(),
			Blocking:      true,
			AcceptsCaller: true,
			Handler:       tool.HandlerFunc(pipe.delegateAgent),
		},
		{
			Name:          "fanout_delegate",
			Description:   "Delegate the same prompt to several sub-agents concurrently.",
			Parameters:    fanoutParams(),
			Blocking:      true,
			AcceptsCaller: true,
			Handler:       tool.HandlerFunc(pipe.fanoutDelegate),
		},
		{
			Name:        "agent_router",
			Description: "Pick the best sub-agent for a prompt without delegating.",
			Parameters:  promptOnlyParams("Prompt to classify"),
			Handler:     tool.HandlerFunc(pipe.routeAgent),
		},
		{
			Name:          "route_and_delegate",
			Description:   "Route a prompt to the best sub-agent and delegate it in one step.",
			Parameters:    promptOnlyParams("Prompt to route and delegate"),
			Blocking:      true,
			AcceptsCaller: true,
			Handler:       tool.HandlerFunc(pipe.routeAndDelegate),
		},
		{
			Name:        "consensus_merge",
			Description: "Merge several answers into a deduplicated bullet list.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"answers": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Answers to merge",
					},
				},
				"required": []any{"answers"},
			},
			Handler: tool.HandlerFunc(consensusMergeTool),
		},
		{
			Name:          "fanout_and_consensus",
			Description:   "Delegate a prompt to several sub-agents and merge their answers.",
			Parameters:    fanoutParams(),
			Blocking:      true,
			AcceptsCaller: true,
			Handler:       tool.HandlerFunc(pipe.fanoutAndConsensus),
		},
		{
			Name:        "critic_review",
			Description: "Score a draft (0-100) with a pass/revise verdict and suggestions.",
			Parameters:  textOnlyParams("Draft text to review"),
			Handler: tool.HandlerFunc(func(_ context.Context, args map[string]any) (any, error) {
				text, err := tool.StringArg(args, "text")
				if err != nil {
					return nil, err
				}
				return CriticReview(text), nil
			}),
		},
	}

	for _, d := range helpers {
		if err := reg.Register(d); err != nil {
			return fmt.Errorf("register helper %s: %w", d.Name, err)
		}
	}
	return nil
}

func (p *Pipeline) delegateAgent(ctx context.Context, args map[string]any) (any, error) {
	agentName, err := tool.StringArg(args, "agent")
	if err != nil {
		return nil, err
	}
	prompt, err := tool.StringArg(args, "prompt")
	if err != nil {
		return nil, err
	}

	caller, _ := tool.CallerFrom(ctx)
	child, err := p.childCaller(caller)
	if err != nil {
		return nil, err
	}
	return p.Delegate(ctx, agentName, map[string]any{"prompt": prompt}, child)
}

func (p *Pipeline) fanoutDelegate(ctx context.Context, args map[string]any) (any, error) {
	agents, prompt, err := fanoutArgs(args)
	if err != nil {
		return nil, err
	}

	caller, _ := tool.CallerFrom(ctx)
	child, err := p.childCaller(caller)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	results := make(map[string]any, len(agents))
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range agents {
		g.Go(func() error {
			out, err := p.Delegate(gctx, name, map[string]any{"prompt": prompt}, child)
			if err != nil {
				return fmt.Errorf("agent %q: %w", name, err)
			}
			mu.Lock()
			results[name] = out
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) routeAgent(_ context.Context, args map[string]any) (any, error) {
	prompt, err := tool.StringArg(args, "prompt")
	if err != nil {
		return nil, err
	}
	agentName, reason := Route(prompt, p.catalog)
	if agentName == "" {
		return nil, fmt.Errorf("agent_router: %s", reason)
	}
	return map[string]any{
		"agent":     agentName,
		"reason":    reason,
		"available": p.catalog.Names(),
	}, nil
}

func (p *Pipeline) routeAndDelegate(ctx context.Context, args map[string]any) (any, error) {
	prompt, err := tool.StringArg(args, "prompt")
	if err != nil {
		return nil, err
	}
	agentName, reason := Route(prompt, p.catalog)
	if agentName == "" {
		return nil, fmt.Errorf("route_and_delegate: %s", reason)
	}

	caller, _ := tool.CallerFrom(ctx)
	child, err := p.childCaller(caller)
	if err != nil {
		return nil, err
	}
	out, err := p.Delegate(ctx, agentName, map[string]any{"prompt": prompt}, child)
	if err != nil {
		return nil, err
	}
	return map[string]any{"agent": agentName, "reason": reason, "result": out}, nil
}

func (p *Pipeline) fanoutAndConsensus(ctx context.Context, args map[string]any) (any, error) {
	fanned, err := p.fanoutDelegate(ctx, args)
	if err != nil {
		return nil, err
	}
	results := fanned.(map[string]any)

	answers := make([]string, 0, len(results))
	for _, out := range results {
		answers = append(answers, stringifyOutput(out))
	}
	return map[string]any{
		"bullets": MergeConsensus(answers),
		"sources": len(answers),
	}, nil
}

func consensusMergeTool(_ context.Context, args map[string]any) (any, error) {
	raw, ok := args["answers"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: argument \"answers\" must be an array of strings", tool.ErrBadArgs)
	}
	answers := make([]string, 0, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: answers[%d] must be a string, got %T", tool.ErrBadArgs, i, v)
		}
		answers = append(answers, s)
	}
	return map[string]any{
		"bullets": MergeConsensus(answers),
		"sources": len(answers),
	}, nil
}

// stringifyOutput flattens a delegation result to text for consensus. The
// pipeline returns a map with an "output" field; other shapes are JSONed.
func stringifyOutput(v any) string {
	if m, ok := v.(map[string]any); ok {
		if out, ok := m["output"].(string); ok {
			return out
		}
		if out, ok := m["output"]; ok && out != nil {
			if raw, err := json.Marshal(out); err == nil {
				return string(raw)
			}
		}
	}
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}

func fanoutArgs(args map[string]any) ([]string, string, error) {
	prompt, err := tool.StringArg(args, "prompt")
	if err != nil {
		return nil, "", err
	}
	raw, ok := args["agents"].([]any)
	if !ok || len(raw) == 0 {
		return nil, "", fmt.Errorf("%w: argument \"agents\" must be a non-empty array of agent names", tool.ErrBadArgs)
	}
	agents := make([]string, 0, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, "", fmt.Errorf("%w: agents[%d] must be a string, got %T", tool.ErrBadArgs, i, v)
		}
		agents = append(agents, s)
	}
	return agents, prompt, nil
}

func delegateParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"agent":  map[string]any{"type": "string", "description": "Sub-agent name from the catalog"},
			"prompt": map[string]any{"type": "string", "description": "Prompt for the sub-agent"},
		},
		"required": []any{"agent", "prompt"},
	}
}

func fanoutParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"agents": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Sub-agent names to fan out to",
			},
			"prompt": map[string]any{"type": "string", "description": "Prompt sent to every sub-agent"},
		},
		"required": []any{"agents", "prompt"},
	}
}

func promptOnlyParams(desc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{"type": "string", "description": desc},
		},
		"required": []any{"prompt"},
	}
}

func textOnlyParams(desc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string", "description": desc},
		},
		"required": []any{"text"},
	}
}
