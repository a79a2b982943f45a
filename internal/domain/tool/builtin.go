package tool

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// RegisterBuiltins installs the small deterministic tools every deployment
// gets: arithmetic, text casing, and character counting.
func RegisterBuiltins(r *Registry) error {
	builtins := []Descriptor{
		{
			Name:        "math_eval",
			Description: "Evaluate an arithmetic expression (+ - * / and parentheses).",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"expr": map[string]any{"type": "string", "description": "Expression to evaluate, e.g. \"2+2\""},
				},
				"required": []any{"expr"},
			},
			Handler: HandlerFunc(mathEval),
		},
		{
			Name:        "text_upper",
			Description: "Uppercase the given text.",
			Parameters:  textParams("Text to uppercase"),
			Handler: HandlerFunc(func(_ context.Context, args map[string]any) (any, error) {
				text, err := StringArg(args, "text")
				if err != nil {
					return nil, err
				}
				return strings.ToUpper(text), nil
			}),
		},
		{
			Name:        "text_lower",
			Description: "Lowercase the given text.",
			Parameters:  textParams("Text to lowercase"),
			Handler: HandlerFunc(func(_ context.Context, args map[string]any) (any, error) {
				text, err := StringArg(args, "text")
				if err != nil {
					return nil, err
				}
				return strings.ToLower(text), nil
			}),
		},
		{
			Name:        "count_characters",
			Description: "Count characters in the given text.",
			Parameters:  textParams("Text to measure"),
			Handler: HandlerFunc(func(_ context.Context, args map[string]any) (any, error) {
				text, err := StringArg(args, "text")
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"text":  text,
					"count": utf8.RuneCountInString(text),
				}, nil
			}),
		},
	}

	for _, d := range builtins {
		if err := r.Register(d); err != nil {
			return fmt.Errorf("register builtin %s: %w", d.Name, err)
		}
	}
	return nil
}

func textParams(desc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string", "description": desc},
		},
		"required": []any{"text"},
	}
}

// StringArg extracts a required string argument. Numbers are accepted and
// formatted, since upstream step outputs are often numeric.
func StringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: missing required argument %q", ErrBadArgs, key)
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("%w: argument %q must be a string, got %T", ErrBadArgs, key, v)
	}
}

// mathEval evaluates a basic arithmetic expression.
// Supports + - * /, parentheses, unary minus, decimal numbers.
func mathEval(_ context.Context, args map[string]any) (any, error) {
	// "expression" is accepted as an alias for the declared "expr" parameter.
	key := "expr"
	if _, ok := args[key]; !ok {
		if _, ok := args["expression"]; ok {
			key = "expression"
		}
	}
	expr, err := StringArg(args, key)
	if err != nil {
		return nil, err
	}

	p := &exprParser{input: expr}
	val, err := p.parseExpr()
	if err != nil {
		return nil, fmt.Errorf("math_eval: %w", err)
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("math_eval: unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return val, nil
}

// exprParser is a recursive-descent parser over a byte offset.
// Grammar: expr = term (('+'|'-') term)* ; term = factor (('*'|'/') factor)* ;
// factor = number | '(' expr ')' | '-' factor
type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseFactor() (float64, error) {
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		val, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return val, nil
	case c == '-':
		p.pos++
		val, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -val, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	case c == 0:
		return 0, fmt.Errorf("unexpected end of expression")
	default:
		return 0, fmt.Errorf("unexpected character %q", c)
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := rune(p.input[p.pos])
		if !unicode.IsDigit(c) && c != '.' {
			break
		}
		p.pos++
	}
	val, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return val, nil
}
