package mx

import (
	"fmt"
	"math"
	"strconv"
)

// ============================================================
// Coercion — the boundary between plain Go values and trees
// ============================================================

// Coerce converts v to an expression:
//
//   - an Expr is returned unchanged
//   - Go integers and floats become constants
//   - a string that spells a finite number becomes a constant, any other
//     non-empty string a variable
//   - a func(Bindings) (float64, bool) becomes an opaque Func
func Coerce(v any) (Expr, error) {
	switch x := v.(type) {
	case Expr:
		return x, nil
	case float64:
		return constExpr(x)
	case float32:
		return constExpr(float64(x))
	case int:
		return constExpr(float64(x))
	case int8:
		return constExpr(float64(x))
	case int16:
		return constExpr(float64(x))
	case int32:
		return constExpr(float64(x))
	case int64:
		return constExpr(float64(x))
	case uint:
		return constExpr(float64(x))
	case uint8:
		return constExpr(float64(x))
	case uint16:
		return constExpr(float64(x))
	case uint32:
		return constExpr(float64(x))
	case uint64:
		return constExpr(float64(x))
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return constExpr(f)
		}
		return varExpr(x)
	case func(Bindings) (float64, bool):
		return Fn("", x), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrInvalidCoercion, v)
}

func constExpr(v float64) (Expr, error) {
	c, err := NewConst(v)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func varExpr(name string) (Expr, error) {
	v, err := NewVar(name)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// C is Coerce for values known to be valid. It panics on error.
func C(v any) Expr {
	e, err := Coerce(v)
	if err != nil {
		panic(err)
	}
	return e
}

// ============================================================
// Chain — fluent construction with a sticky error
// ============================================================

// Chain builds an expression step by step. The first error stops the
// chain; later steps are no-ops and Result reports it.
//
//	d, err := mx.From("x").Pow(3).Plus(mx.From(2).Times("x")).Derivative("x").Result()
type Chain struct {
	e   Expr
	err error
}

func From(v any) Chain {
	e, err := Coerce(v)
	return Chain{e: e, err: err}
}

func (c Chain) Result() (Expr, error) { return c.e, c.err }

// Must returns the expression and panics if the chain failed.
func (c Chain) Must() Expr { return Must(c.e, c.err) }

func (c Chain) binary(v any, op func(a, b Expr) (Expr, error)) Chain {
	if c.err != nil {
		return c
	}
	if o, ok := v.(Chain); ok {
		if o.err != nil {
			return o
		}
		v = o.e
	}
	other, err := Coerce(v)
	if err != nil {
		return Chain{err: err}
	}
	e, err := op(c.e, other)
	return Chain{e: e, err: err}
}

func (c Chain) unary(op func(Expr) (Expr, error)) Chain {
	if c.err != nil {
		return c
	}
	e, err := op(c.e)
	return Chain{e: e, err: err}
}

func infallible(f func(a, b Expr) Expr) func(a, b Expr) (Expr, error) {
	return func(a, b Expr) (Expr, error) { return f(a, b), nil }
}

func (c Chain) Plus(v any) Chain      { return c.binary(v, infallible(AddOf)) }
func (c Chain) Minus(v any) Chain     { return c.binary(v, infallible(SubOf)) }
func (c Chain) Times(v any) Chain     { return c.binary(v, infallible(MulOf)) }
func (c Chain) DividedBy(v any) Chain { return c.binary(v, DivOf) }
func (c Chain) Pow(v any) Chain       { return c.binary(v, PowOf) }

func (c Chain) Sin() Chain { return c.unary(func(e Expr) (Expr, error) { return SinOf(e), nil }) }
func (c Chain) Cos() Chain { return c.unary(func(e Expr) (Expr, error) { return CosOf(e), nil }) }
func (c Chain) Exp() Chain { return c.unary(func(e Expr) (Expr, error) { return ExpOf(e), nil }) }
func (c Chain) Tan() Chain { return c.unary(TanOf) }
func (c Chain) Ln() Chain  { return c.unary(LnOf) }

// Derivative differentiates with respect to by, a variable or its name.
func (c Chain) Derivative(by any) Chain {
	return c.binary(by, func(e, v Expr) (Expr, error) { return e.Differentiate(v) })
}
