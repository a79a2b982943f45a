package tool

import (
	"context"
	"errors"
	"testing"
)

func builtinRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	if err := RegisterBuiltins(reg); err != nil {
		t.Fatalf("RegisterBuiltins() error = %v", err)
	}
	return reg
}

func invoke(t *testing.T, reg *Registry, name string, args map[string]any) (any, error) {
	t.Helper()
	d, ok := reg.Get(name)
	if !ok {
		t.Fatalf("tool %s not registered", name)
	}
	return d.Handler.Invoke(context.Background(), args)
}

func TestMathEval(t *testing.T) {
	t.Parallel()
	reg := builtinRegistry(t)

	cases := []struct {
		expr string
		want float64
	}{
		{"2+2", 4},
		{"2+3*4", 14},
		{"(2+3)*4", 20},
		{"10/4", 2.5},
		{"-3+5", 2},
		{"2*(-3)", -6},
		{" 7 - 2 ", 5},
		{"1.5*2", 3},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			t.Parallel()
			got, err := invoke(t, reg, "math_eval", map[string]any{"expr": tc.expr})
			if err != nil {
				t.Fatalf("math_eval(%q) error = %v", tc.expr, err)
			}
			if got != tc.want {
				t.Fatalf("math_eval(%q) = %v; want %v", tc.expr, got, tc.want)
			}
		})
	}
}

func TestMathEval_Errors(t *testing.T) {
	t.Parallel()
	reg := builtinRegistry(t)

	for _, expr := range []string{"1/0", "2+", "(1+2", "hello", ""} {
		t.Run(expr, func(t *testing.T) {
			t.Parallel()
			if _, err := invoke(t, reg, "math_eval", map[string]any{"expr": expr}); err == nil {
				t.Fatalf("math_eval(%q) error = nil; want failure", expr)
			}
		})
	}

	t.Run("missing argument", func(t *testing.T) {
		t.Parallel()
		_, err := invoke(t, reg, "math_eval", map[string]any{})
		if !errors.Is(err, ErrBadArgs) {
			t.Fatalf("error = %v; want ErrBadArgs", err)
		}
	})
}

func TestMathEval_ExpressionAlias(t *testing.T) {
	t.Parallel()
	reg := builtinRegistry(t)

	got, err := invoke(t, reg, "math_eval", map[string]any{"expression": "6*7"})
	if err != nil {
		t.Fatalf("math_eval with expression alias error = %v", err)
	}
	if got != float64(42) {
		t.Fatalf("got %v; want 42", got)
	}
}

func TestTextTools(t *testing.T) {
	t.Parallel()
	reg := builtinRegistry(t)

	t.Run("text_upper", func(t *testing.T) {
		t.Parallel()
		got, err := invoke(t, reg, "text_upper", map[string]any{"text": "hello"})
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if got != "HELLO" {
			t.Fatalf("got %v; want HELLO", got)
		}
	})

	t.Run("text_lower", func(t *testing.T) {
		t.Parallel()
		got, err := invoke(t, reg, "text_lower", map[string]any{"text": "HeLLo"})
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if got != "hello" {
			t.Fatalf("got %v; want hello", got)
		}
	})

	t.Run("count_characters", func(t *testing.T) {
		t.Parallel()
		got, err := invoke(t, reg, "count_characters", map[string]any{"text": "héllo"})
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		m := got.(map[string]any)
		if m["count"] != 5 {
			t.Fatalf("count = %v; want 5 (runes, not bytes)", m["count"])
		}
	})

	t.Run("numeric input is formatted", func(t *testing.T) {
		t.Parallel()
		// Upstream step outputs are often numbers; the text tools accept them.
		got, err := invoke(t, reg, "text_upper", map[string]any{"text": float64(4)})
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if got != "4" {
			t.Fatalf("got %v; want \"4\"", got)
		}
	})
}

func TestStringArg_BadShape(t *testing.T) {
	t.Parallel()

	_, err := StringArg(map[string]any{"text": []any{"not", "a", "string"}}, "text")
	if !errors.Is(err, ErrBadArgs) {
		t.Fatalf("error = %v; want ErrBadArgs", err)
	}
}
