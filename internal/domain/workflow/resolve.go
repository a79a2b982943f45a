package workflow

import (
	"fmt"
	"regexp"
)

// placeholderPattern matches a whole-string placeholder: ${node-id} or
// ${node-id.field}. Strings merely containing a placeholder are left alone —
// substitution is exact-form only, so values never get coerced into text.
var placeholderPattern = regexp.MustCompile(`^\$\{([A-Za-z0-9_-]+)(?:\.([A-Za-z0-9_-]+))?\}$`)

// ResolveArgs returns a copy of args with placeholder strings replaced by
// prior node results. ${id} substitutes the full result; ${id.field}
// projects one field out of a map-shaped result. Non-string values and
// non-matching strings pass through untouched. Resolution recurses into
// nested maps and slices.
//
// A placeholder naming a node with no recorded result is an internal
// invariant breach (the scheduler guarantees dependencies ran first), so it
// surfaces as ErrUnresolvedReference.
func ResolveArgs(args map[string]any, results map[string]any) (map[string]any, error) {
	if args == nil {
		return nil, nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		resolved, err := resolveValue(v, results)
		if err != nil {
			return nil, fmt.Errorf("arg %q: %w", k, err)
		}
		out[k] = resolved
	}
	return out, nil
}

func resolveValue(v any, results map[string]any) (any, error) {
	switch t := v.(type) {
	case string:
		return resolveString(t, results)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			resolved, err := resolveValue(inner, results)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			resolved, err := resolveValue(inner, results)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		// numbers, bools, nil: no coercion, no inspection
		return v, nil
	}
}

func resolveString(s string, results map[string]any) (any, error) {
	m := placeholderPattern.FindStringSubmatch(s)
	if m == nil {
		return s, nil
	}
	nodeID, field := m[1], m[2]

	result, ok := results[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnresolvedReference, s)
	}
	if field == "" {
		return result, nil
	}

	asMap, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q projects field of non-map result", ErrUnresolvedReference, s)
	}
	fieldVal, ok := asMap[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q field not present", ErrUnresolvedReference, s)
	}
	return fieldVal, nil
}
