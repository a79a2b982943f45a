package workflow

import "fmt"

// Validate checks a plan's structure before execution. Checks run in a fixed
// order and the first violation wins:
//
//  1. node ids are non-empty and unique
//  2. dependencies name nodes present in the plan
//  3. the dependency graph is acyclic
//  4. node types are known and targets non-empty
//
// A nil or empty plan is malformed: there is nothing to execute.
func Validate(p *Plan) error {
	if p == nil || len(p.Nodes) == 0 {
		return fmt.Errorf("%w: plan has no nodes", ErrMalformedNode)
	}

	seen := make(map[string]struct{}, len(p.Nodes))
	for i := range p.Nodes {
		id := p.Nodes[i].ID
		if id == "" {
			return fmt.Errorf("%w: node %d has empty id", ErrDuplicateNodeID, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateNodeID, id)
		}
		seen[id] = struct{}{}
	}

	for i := range p.Nodes {
		n := &p.Nodes[i]
		for _, dep := range n.DependsOn {
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("%w: node %q depends on %q", ErrUnknownDependency, n.ID, dep)
			}
		}
	}

	if err := checkAcyclic(p); err != nil {
		return err
	}

	for i := range p.Nodes {
		n := &p.Nodes[i]
		if n.Type != NodeTypeTool && n.Type != NodeTypeAgent {
			return fmt.Errorf("%w: node %q has unknown type %q", ErrMalformedNode, n.ID, n.Type)
		}
		if n.Target() == "" {
			return fmt.Errorf("%w: node %q has no target", ErrMalformedNode, n.ID)
		}
	}
	return nil
}

// checkAcyclic runs Kahn's algorithm purely to detect cycles. A self-edge is
// a cycle like any other.
func checkAcyclic(p *Plan) error {
	indegree := make(map[string]int, len(p.Nodes))
	dependents := make(map[string][]string, len(p.Nodes))
	for i := range p.Nodes {
		n := &p.Nodes[i]
		indegree[n.ID] += 0
		for _, dep := range n.DependsOn {
			indegree[n.ID]++
			dependents[dep] = append(dependents[dep], n.ID)
		}
	}

	queue := make([]string, 0, len(p.Nodes))
	for i := range p.Nodes {
		if indegree[p.Nodes[i].ID] == 0 {
			queue = append(queue, p.Nodes[i].ID)
		}
	}

	processed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		processed++
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if processed != len(p.Nodes) {
		remaining := make([]string, 0)
		for id, deg := range indegree {
			if deg > 0 {
				remaining = append(remaining, id)
			}
		}
		return fmt.Errorf("%w: involving %v", ErrCyclicPlan, remaining)
	}
	return nil
}
