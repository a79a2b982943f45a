// Offline plan validator.
// Reads plan documents (JSON or YAML) and reports the same structural
// violations the server would reject them with.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loomworks/loom/internal/domain/workflow"
)

// Violation is one rejected plan file.
type Violation struct {
	File    string
	Code    string
	Message string
}

func main() {
	showOrder := flag.Bool("order", false, "Print the execution order of valid plans")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: planlint [-order] <plan.json|plan.yaml> ...")
		os.Exit(2)
	}

	var violations []Violation
	checked := 0
	for _, file := range files {
		checked++
		plan, err := loadPlan(file)
		if err != nil {
			violations = append(violations, Violation{File: file, Code: "PARSE", Message: err.Error()})
			continue
		}

		if err := workflow.Validate(plan); err != nil {
			violations = append(violations, Violation{File: file, Code: codeFor(err), Message: err.Error()})
			continue
		}

		if *showOrder {
			order, err := workflow.Order(plan)
			if err != nil {
				violations = append(violations, Violation{File: file, Code: "ORDER", Message: err.Error()})
				continue
			}
			fmt.Printf("%s: %s\n", file, strings.Join(order, " -> "))
		}
	}

	fmt.Printf("=== Plan Lint Report ===\n")
	fmt.Printf("Plans checked: %d\n", checked)
	fmt.Printf("Violations: %d\n\n", len(violations))
	for _, v := range violations {
		fmt.Printf("[%s] %s: %s\n", v.Code, v.File, v.Message)
	}
	if len(violations) > 0 {
		fmt.Printf("\nFAILED: %d invalid plans\n", len(violations))
		os.Exit(1)
	}
	fmt.Println("PASSED: all plans are valid")
}

// loadPlan decodes a plan file. YAML documents are converted to JSON first so
// both formats share one decode path.
func loadPlan(path string) (*workflow.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		data, err = json.Marshal(normalizeYAML(raw))
		if err != nil {
			return nil, fmt.Errorf("converting %s: %w", path, err)
		}
	}

	var plan workflow.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &plan, nil
}

// normalizeYAML rewrites map[any]any (yaml.v3's map shape for some inputs)
// into map[string]any so json.Marshal accepts it.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = normalizeYAML(inner)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = normalizeYAML(inner)
		}
		return out
	default:
		return v
	}
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, workflow.ErrDuplicateNodeID):
		return "DUPLICATE-ID"
	case errors.Is(err, workflow.ErrUnknownDependency):
		return "UNKNOWN-DEP"
	case errors.Is(err, workflow.ErrCyclicPlan):
		return "CYCLE"
	case errors.Is(err, workflow.ErrMalformedNode):
		return "MALFORMED"
	default:
		return "INVALID"
	}
}
