package facts

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestEvaluate(t *testing.T) {
	t.Run("Valid Expressions", func(t *testing.T) {
		cases := map[string]float64{
			"1+2*3":           7,
			"(1+2)*3":         9,
			"-4+10":           6,
			"10/4":            2.5,
			" 2 * ( 3 + 4 ) ": 14,
			"(500+200)/12":    700.0 / 12.0,
			"1.5+1.25":        2.75,
			"--3":             3,
		}
		for expr, want := range cases {
			got, err := Evaluate(expr)
			if err != nil {
				t.Errorf("Evaluate(%q) failed: %v", expr, err)
				continue
			}
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("Evaluate(%q) = %v, want %v", expr, got, want)
			}
		}
	})

	t.Run("Syntax Errors", func(t *testing.T) {
		for _, expr := range []string{"", "   ", "2**3", "1.2.3", "(1+2", "1+", "abc", "1 2", ")"} {
			if _, err := Evaluate(expr); !errors.Is(err, ErrSyntax) {
				t.Errorf("Evaluate(%q) error = %v, want ErrSyntax", expr, err)
			}
		}
	})

	t.Run("Non Finite", func(t *testing.T) {
		if _, err := Evaluate("1/0"); !errors.Is(err, ErrNonFinite) {
			t.Errorf("expected ErrNonFinite for division by zero, got %v", err)
		}
		big := strings.Repeat("9", 300)
		if _, err := Evaluate(big + "*" + big + "*" + big); !errors.Is(err, ErrNonFinite) {
			t.Errorf("expected ErrNonFinite for overflow, got %v", err)
		}
	})

	t.Run("Nesting Limit", func(t *testing.T) {
		expr := strings.Repeat("(", maxDepth+1) + "1" + strings.Repeat(")", maxDepth+1)
		if _, err := Evaluate(expr); !errors.Is(err, ErrSyntax) {
			t.Errorf("expected ErrSyntax for deep nesting, got %v", err)
		}
	})

	t.Run("Sign Limit", func(t *testing.T) {
		if got, err := Evaluate(strings.Repeat("-", maxDepth) + "2"); err != nil || got != 2 {
			t.Errorf("expected 2 for %d signs, got %v (%v)", maxDepth, got, err)
		}
		expr := strings.Repeat("-", 1_000_000) + "1"
		if _, err := Evaluate(expr); !errors.Is(err, ErrSyntax) {
			t.Errorf("expected ErrSyntax for a long run of signs, got %v", err)
		}
		if _, err := Evaluate("2*" + strings.Repeat("+", maxDepth+1) + "1"); !errors.Is(err, ErrSyntax) {
			t.Errorf("expected ErrSyntax for signs after an operator, got %v", err)
		}
	})
}
