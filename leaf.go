package mx

import (
	"fmt"
	"math"
	"strconv"
)

// ============================================================
// Const — finite real number
// ============================================================

type Const struct{ v float64 }

// N returns the constant v. It panics if v is NaN or infinite.
func N(v float64) *Const {
	c, err := NewConst(v)
	if err != nil {
		panic(err)
	}
	return c
}

func NewConst(v float64) (*Const, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConstant, v)
	}
	return &Const{v: v}, nil
}

func (c *Const) Kind() Kind                            { return KindConst }
func (c *Const) Value(Bindings) (float64, bool, error) { return c.v, true, nil }
func (c *Const) Differentiate(Expr) (Expr, error)      { return N(0), nil }
func (c *Const) String() string                        { return strconv.FormatFloat(c.v, 'g', -1, 64) }
func (c *Const) Name() string                          { return "" }
func (c *Const) Children() []Expr                      { return nil }
func (c *Const) Float64() float64                      { return c.v }

// ============================================================
// Var — named scalar
// ============================================================

type Var struct{ name string }

// S returns the variable called name. It panics if name is empty.
func S(name string) *Var {
	v, err := NewVar(name)
	if err != nil {
		panic(err)
	}
	return v
}

func NewVar(name string) (*Var, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidVariableName)
	}
	return &Var{name: name}, nil
}

func (s *Var) Kind() Kind       { return KindVar }
func (s *Var) String() string   { return s.name }
func (s *Var) Name() string     { return s.name }
func (s *Var) Children() []Expr { return nil }

func (s *Var) Value(b Bindings) (float64, bool, error) {
	v, ok := b[s.name]
	return v, ok, nil
}

func (s *Var) Differentiate(by Expr) (Expr, error) {
	name, err := targetName(by)
	if err != nil {
		return nil, err
	}
	if name == s.name {
		return N(1), nil
	}
	return N(0), nil
}

// ============================================================
// Func — opaque numeric function of the binding
// ============================================================

// Func wraps a Go function as a leaf. It can be evaluated but has no
// derivative rule.
type Func struct {
	label string
	fn    func(Bindings) (float64, bool)
}

// Fn wraps fn as an expression. label is used only for String.
func Fn(label string, fn func(Bindings) (float64, bool)) *Func {
	return &Func{label: label, fn: fn}
}

func (f *Func) Kind() Kind       { return KindFunc }
func (f *Func) Name() string     { return "" }
func (f *Func) Children() []Expr { return nil }

func (f *Func) String() string {
	if f.label == "" {
		return "fn"
	}
	return f.label
}

func (f *Func) Value(b Bindings) (float64, bool, error) {
	if f.fn == nil {
		return 0, false, nil
	}
	v, ok := f.fn(b)
	return v, ok, nil
}

func (f *Func) Differentiate(Expr) (Expr, error) {
	return nil, fmt.Errorf("%w: opaque function %s", ErrNotDifferentiable, f)
}
