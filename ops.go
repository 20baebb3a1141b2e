package mx

import (
	"fmt"
	"math"
	"strconv"
)

// ============================================================
// Add — a + b
// ============================================================

type Add struct{ a, b Expr }

// AddOf returns a + b, folding constants and dropping a zero operand.
func AddOf(a, b Expr) Expr {
	av, aok := folded(a)
	bv, bok := folded(b)
	switch {
	case aok && av == 0:
		return b
	case bok && bv == 0:
		return a
	case aok && bok:
		if c, ok := foldConst(av + bv); ok {
			return c
		}
	}
	return &Add{a: a, b: b}
}

// SubOf returns a - b, expressed as (-1 * b) + a.
func SubOf(a, b Expr) Expr { return AddOf(MulOf(N(-1), b), a) }

func (n *Add) Kind() Kind       { return KindAdd }
func (n *Add) Name() string     { return "" }
func (n *Add) Children() []Expr { return []Expr{n.a, n.b} }
func (n *Add) String() string   { return "(" + n.a.String() + " + " + n.b.String() + ")" }

func (n *Add) Value(b Bindings) (float64, bool, error) {
	x, ok, err := n.a.Value(b)
	if err != nil || !ok {
		return 0, false, err
	}
	y, ok, err := n.b.Value(b)
	if err != nil || !ok {
		return 0, false, err
	}
	return x + y, true, nil
}

func (n *Add) Differentiate(by Expr) (Expr, error) {
	da, err := n.a.Differentiate(by)
	if err != nil {
		return nil, err
	}
	db, err := n.b.Differentiate(by)
	if err != nil {
		return nil, err
	}
	return AddOf(da, db), nil
}

// ============================================================
// Mul — a * b
// ============================================================

type Mul struct{ a, b Expr }

// MulOf returns a * b. A zero operand yields 0 and a unit operand yields
// the other operand itself.
func MulOf(a, b Expr) Expr {
	av, aok := folded(a)
	bv, bok := folded(b)
	switch {
	case (aok && av == 0) || (bok && bv == 0):
		return N(0)
	case aok && av == 1:
		return b
	case bok && bv == 1:
		return a
	case aok && bok:
		if c, ok := foldConst(av * bv); ok {
			return c
		}
	}
	return &Mul{a: a, b: b}
}

func (n *Mul) Kind() Kind       { return KindMul }
func (n *Mul) Name() string     { return "" }
func (n *Mul) Children() []Expr { return []Expr{n.a, n.b} }
func (n *Mul) String() string   { return "(" + n.a.String() + " * " + n.b.String() + ")" }

func (n *Mul) Value(b Bindings) (float64, bool, error) {
	x, ok, err := n.a.Value(b)
	if err != nil || !ok {
		return 0, false, err
	}
	y, ok, err := n.b.Value(b)
	if err != nil || !ok {
		return 0, false, err
	}
	return x * y, true, nil
}

func (n *Mul) Differentiate(by Expr) (Expr, error) {
	da, err := n.a.Differentiate(by)
	if err != nil {
		return nil, err
	}
	db, err := n.b.Differentiate(by)
	if err != nil {
		return nil, err
	}
	return AddOf(MulOf(da, n.b), MulOf(db, n.a)), nil
}

// ============================================================
// Div — a / b
// ============================================================

type Div struct{ a, b Expr }

// DivOf returns a / b. It fails with ErrDivisionByZero when b folds to a
// value within Epsilon of zero.
func DivOf(a, b Expr) (Expr, error) {
	bv, bok := folded(b)
	if bok && math.Abs(bv) < Epsilon {
		return nil, fmt.Errorf("%w: %s / %s", ErrDivisionByZero, a, b)
	}
	if bok && bv == 1 {
		return a, nil
	}
	if av, aok := folded(a); aok && bok {
		if c, ok := foldConst(av / bv); ok {
			return c, nil
		}
	}
	return &Div{a: a, b: b}, nil
}

func (n *Div) Kind() Kind       { return KindDiv }
func (n *Div) Name() string     { return "" }
func (n *Div) Children() []Expr { return []Expr{n.a, n.b} }
func (n *Div) String() string   { return "(" + n.a.String() + " / " + n.b.String() + ")" }

func (n *Div) Value(b Bindings) (float64, bool, error) {
	x, ok, err := n.a.Value(b)
	if err != nil || !ok {
		return 0, false, err
	}
	y, ok, err := n.b.Value(b)
	if err != nil || !ok {
		return 0, false, err
	}
	if math.Abs(y) < Epsilon {
		return 0, false, fmt.Errorf("%w: %s evaluates to %v", ErrDivisionByZero, n.b, y)
	}
	return x / y, true, nil
}

func (n *Div) Differentiate(by Expr) (Expr, error) {
	da, err := n.a.Differentiate(by)
	if err != nil {
		return nil, err
	}
	if _, ok := folded(n.b); ok {
		return DivOf(da, n.b)
	}
	db, err := n.b.Differentiate(by)
	if err != nil {
		return nil, err
	}
	num := SubOf(MulOf(da, n.b), MulOf(db, n.a))
	return DivOf(num, MulOf(n.b, n.b))
}

// ============================================================
// Pow — base ^ n for a fixed number n
// ============================================================

type Pow struct {
	base Expr
	n    float64
}

// PowOf returns base ^ exp. exp must fold to a number; symbolic exponents
// fail with ErrInvalidExponent.
func PowOf(base, exp Expr) (Expr, error) {
	n, ok := folded(exp)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExponent, exp)
	}
	switch n {
	case 1:
		return base, nil
	case 0:
		return N(1), nil
	}
	if bv, ok := folded(base); ok {
		v, err := power(bv, n)
		if err != nil {
			return nil, err
		}
		if c, ok := foldConst(v); ok {
			return c, nil
		}
	}
	return &Pow{base: base, n: n}, nil
}

func power(b, n float64) (float64, error) {
	if n < 0 && math.Abs(b) < Epsilon {
		return 0, fmt.Errorf("%w: %v ^ %v", ErrDivisionByZero, b, n)
	}
	v := math.Pow(b, n)
	if math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %v ^ %v", ErrInvalidDomain, b, n)
	}
	return v, nil
}

func (p *Pow) Kind() Kind        { return KindPow }
func (p *Pow) Name() string      { return "" }
func (p *Pow) Children() []Expr  { return []Expr{p.base} }
func (p *Pow) Base() Expr        { return p.base }
func (p *Pow) Exponent() float64 { return p.n }

func (p *Pow) String() string {
	return "(" + p.base.String() + " ^ " + strconv.FormatFloat(p.n, 'g', -1, 64) + ")"
}

func (p *Pow) Value(b Bindings) (float64, bool, error) {
	x, ok, err := p.base.Value(b)
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := power(x, p.n)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func (p *Pow) Differentiate(by Expr) (Expr, error) {
	db, err := p.base.Differentiate(by)
	if err != nil {
		return nil, err
	}
	lower, err := PowOf(p.base, N(p.n-1))
	if err != nil {
		return nil, err
	}
	return MulOf(db, MulOf(N(p.n), lower)), nil
}
