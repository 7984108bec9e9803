package facts

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Evaluation errors.
var (
	ErrSyntax    = errors.New("invalid expression")
	ErrNonFinite = errors.New("expression result is not finite")
)

// maxDepth bounds parenthesis nesting and runs of leading signs.
const maxDepth = 64

// Evaluate computes an arithmetic expression made of decimal numbers,
// + - * / and parentheses. Anything else is rejected with ErrSyntax.
func Evaluate(expr string) (float64, error) {
	p := &exprParser{src: expr}
	p.skipSpace()
	if p.done() {
		return 0, fmt.Errorf("%w: empty", ErrSyntax)
	}
	v, err := p.parseSum(0)
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if !p.done() {
		return 0, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, p.src[p.pos], p.pos)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrNonFinite
	}
	return v, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) done() bool { return p.pos >= len(p.src) }

func (p *exprParser) peek() byte {
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) skipSpace() {
	for !p.done() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// sum := product (('+' | '-') product)*
func (p *exprParser) parseSum(depth int) (float64, error) {
	left, err := p.parseProduct(depth)
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseProduct(depth)
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

// product := unary (('*' | '/') unary)*
func (p *exprParser) parseProduct(depth int) (float64, error) {
	left, err := p.parseUnary(depth)
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary(depth)
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, fmt.Errorf("%w: division by zero", ErrNonFinite)
			}
			left /= right
		}
	}
}

// unary := ('+' | '-')* primary
// A run of signs longer than maxDepth is rejected.
func (p *exprParser) parseUnary(depth int) (float64, error) {
	negate := false
	for signs := 0; ; signs++ {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			break
		}
		if signs >= maxDepth {
			return 0, fmt.Errorf("%w: too many signs", ErrSyntax)
		}
		if op == '-' {
			negate = !negate
		}
		p.pos++
	}
	v, err := p.parsePrimary(depth)
	if err != nil {
		return 0, err
	}
	if negate {
		v = -v
	}
	return v, nil
}

// primary := number | '(' sum ')'
func (p *exprParser) parsePrimary(depth int) (float64, error) {
	p.skipSpace()
	if p.peek() == '(' {
		if depth >= maxDepth {
			return 0, fmt.Errorf("%w: nesting too deep", ErrSyntax)
		}
		p.pos++
		v, err := p.parseSum(depth + 1)
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return 0, fmt.Errorf("%w: missing ')'", ErrSyntax)
		}
		p.pos++
		return v, nil
	}

	start := p.pos
	for !p.done() && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		if p.done() {
			return 0, fmt.Errorf("%w: unexpected end", ErrSyntax)
		}
		return 0, fmt.Errorf("%w: unexpected %q at %d", ErrSyntax, p.src[p.pos], p.pos)
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", ErrSyntax, p.src[start:p.pos])
	}
	return v, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
