package workflow

import "errors"

// Validation failures — structural problems in a submitted plan. These map
// to client errors at the HTTP boundary.
var (
	ErrDuplicateNodeID   = errors.New("duplicate node id")
	ErrUnknownDependency = errors.New("dependency references unknown node")
	ErrCyclicPlan        = errors.New("plan contains a dependency cycle")
	ErrMalformedNode     = errors.New("malformed node")
)

// Execution failures.
var (
	// ErrUnknownTool marks a node whose target is not in the registry.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrDelegationDepthExceeded aborts an agent node that would recurse
	// past the caller's depth limit.
	ErrDelegationDepthExceeded = errors.New("delegation depth exceeded")
)

// Internal invariant breaches — these indicate a bug, not bad input, and map
// to server errors at the HTTP boundary.
var (
	// ErrInternalCycle means the scheduler found leftover nodes after the
	// ready queue drained on a plan that passed validation.
	ErrInternalCycle = errors.New("internal: scheduler left nodes unordered")

	// ErrUnresolvedReference means a placeholder pointed at a result that
	// should exist by schedule order but does not.
	ErrUnresolvedReference = errors.New("internal: unresolved result reference")
)
