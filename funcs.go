package mx

import (
	"fmt"
	"math"
)

// ============================================================
// Unary functions — sin, cos, ln, exp
// ============================================================

type unary struct{ arg Expr }

func (u unary) Name() string     { return "" }
func (u unary) Children() []Expr { return []Expr{u.arg} }
func (u unary) Arg() Expr        { return u.arg }

// eval evaluates the argument and applies f to it.
func (u unary) eval(b Bindings, f func(float64) (float64, error)) (float64, bool, error) {
	x, ok, err := u.arg.Value(b)
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := f(x)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func lift(f func(float64) float64) func(float64) (float64, error) {
	return func(x float64) (float64, error) { return f(x), nil }
}

func logOf(x float64) (float64, error) {
	if x <= 0 {
		return 0, fmt.Errorf("%w: ln(%v)", ErrInvalidDomain, x)
	}
	return math.Log(x), nil
}

type Sin struct{ unary }

func SinOf(x Expr) Expr {
	if v, ok := folded(x); ok {
		if c, ok := foldConst(math.Sin(v)); ok {
			return c
		}
	}
	return &Sin{unary{x}}
}

func (n *Sin) Kind() Kind     { return KindSin }
func (n *Sin) String() string { return "sin(" + n.arg.String() + ")" }

func (n *Sin) Value(b Bindings) (float64, bool, error) { return n.eval(b, lift(math.Sin)) }

func (n *Sin) Differentiate(by Expr) (Expr, error) {
	du, err := n.arg.Differentiate(by)
	if err != nil {
		return nil, err
	}
	return MulOf(CosOf(n.arg), du), nil
}

type Cos struct{ unary }

func CosOf(x Expr) Expr {
	if v, ok := folded(x); ok {
		if c, ok := foldConst(math.Cos(v)); ok {
			return c
		}
	}
	return &Cos{unary{x}}
}

func (n *Cos) Kind() Kind     { return KindCos }
func (n *Cos) String() string { return "cos(" + n.arg.String() + ")" }

func (n *Cos) Value(b Bindings) (float64, bool, error) { return n.eval(b, lift(math.Cos)) }

func (n *Cos) Differentiate(by Expr) (Expr, error) {
	du, err := n.arg.Differentiate(by)
	if err != nil {
		return nil, err
	}
	return MulOf(MulOf(N(-1), SinOf(n.arg)), du), nil
}

// TanOf returns sin(x) / cos(x). It fails with ErrDivisionByZero where
// cos(x) folds to zero.
func TanOf(x Expr) (Expr, error) { return DivOf(SinOf(x), CosOf(x)) }

type Ln struct{ unary }

// LnOf returns the natural logarithm of x. ln(exp(u)) is u.
func LnOf(x Expr) (Expr, error) {
	if v, ok := folded(x); ok {
		if v <= Epsilon {
			return nil, fmt.Errorf("%w: ln(%v)", ErrInvalidDomain, v)
		}
		if c, ok := foldConst(math.Log(v)); ok {
			return c, nil
		}
	}
	if x.Kind() == KindExp {
		return x.Children()[0], nil
	}
	return &Ln{unary{x}}, nil
}

func (n *Ln) Kind() Kind     { return KindLn }
func (n *Ln) String() string { return "ln(" + n.arg.String() + ")" }

func (n *Ln) Value(b Bindings) (float64, bool, error) { return n.eval(b, logOf) }

func (n *Ln) Differentiate(by Expr) (Expr, error) {
	du, err := n.arg.Differentiate(by)
	if err != nil {
		return nil, err
	}
	return DivOf(du, n.arg)
}

type Exp struct{ unary }

// ExpOf returns e raised to x. exp(ln(u)) is u.
func ExpOf(x Expr) Expr {
	if v, ok := folded(x); ok {
		if c, ok := foldConst(math.Exp(v)); ok {
			return c
		}
	}
	if x.Kind() == KindLn {
		return x.Children()[0]
	}
	return &Exp{unary{x}}
}

func (n *Exp) Kind() Kind     { return KindExp }
func (n *Exp) String() string { return "exp(" + n.arg.String() + ")" }

func (n *Exp) Value(b Bindings) (float64, bool, error) { return n.eval(b, lift(math.Exp)) }

func (n *Exp) Differentiate(by Expr) (Expr, error) {
	du, err := n.arg.Differentiate(by)
	if err != nil {
		return nil, err
	}
	return MulOf(du, ExpOf(n.arg)), nil
}
