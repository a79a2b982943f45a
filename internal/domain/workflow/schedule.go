package workflow

import "fmt"

// Order returns the plan's node ids in execution order using Kahn's
// algorithm. When several nodes are ready at once, the one that appears
// first in the plan document goes first, so scheduling is deterministic for
// a given plan.
//
// Order assumes the plan passed Validate. If nodes are left unordered after
// the ready set drains, that is an invariant breach (a cycle slipped past
// validation) and Order returns ErrInternalCycle rather than a user error.
func Order(p *Plan) ([]string, error) {
	position := make(map[string]int, len(p.Nodes))
	indegree := make(map[string]int, len(p.Nodes))
	dependents := make(map[string][]string, len(p.Nodes))

	for i := range p.Nodes {
		n := &p.Nodes[i]
		position[n.ID] = i
		indegree[n.ID] += 0
		for _, dep := range n.DependsOn {
			indegree[n.ID]++
			dependents[dep] = append(dependents[dep], n.ID)
		}
	}

	// ready holds ids with no unmet dependencies. Extraction always picks
	// the lowest plan position, keeping the order stable.
	ready := make([]string, 0, len(p.Nodes))
	for i := range p.Nodes {
		if indegree[p.Nodes[i].ID] == 0 {
			ready = append(ready, p.Nodes[i].ID)
		}
	}

	order := make([]string, 0, len(p.Nodes))
	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if position[ready[i]] < position[ready[best]] {
				best = i
			}
		}
		id := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		order = append(order, id)

		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(p.Nodes) {
		return nil, fmt.Errorf("%w: ordered %d of %d nodes", ErrInternalCycle, len(order), len(p.Nodes))
	}
	return order, nil
}
