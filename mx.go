// Package mx provides a small symbolic expression engine for Go.
//
// Expressions are immutable trees built from constants, variables and
// elementary operations. Any tree can be evaluated under a variable binding
// and differentiated symbolically. The combinators (AddOf, MulOf, DivOf,
// PowOf, ...) fold constants and drop identities while the tree is built, so
// derivative trees stay small across repeated differentiation.
//
// Small dense matrices of expressions (Matrix) are layered on top of the
// scalar combinators.
//
// Nodes never change after construction and may be shared between trees and
// read from several goroutines at once.
package mx

import "fmt"

// Epsilon is the magnitude below which a divisor counts as zero and a
// logarithm argument counts as non-positive.
const Epsilon = 1e-10

// Bindings maps variable names to numbers for evaluation.
type Bindings map[string]float64

// ============================================================
// Kind — node discriminant
// ============================================================

type Kind int

const (
	KindConst Kind = iota
	KindVar
	KindAdd
	KindMul
	KindDiv
	KindPow
	KindSin
	KindCos
	KindLn
	KindExp
	KindFunc
)

var kindNames = [...]string{
	KindConst: "const",
	KindVar:   "var",
	KindAdd:   "add",
	KindMul:   "mul",
	KindDiv:   "div",
	KindPow:   "pow",
	KindSin:   "sin",
	KindCos:   "cos",
	KindLn:    "ln",
	KindExp:   "exp",
	KindFunc:  "func",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ============================================================
// Core Interface
// ============================================================

// Expr is a node of an expression tree.
type Expr interface {
	Kind() Kind

	// Value evaluates the tree under b. ok is false when the result is not
	// fully determined because some variable is unbound; that is not an
	// error. err reports a real failure such as a division by zero.
	Value(b Bindings) (v float64, ok bool, err error)

	// Differentiate returns the derivative with respect to the variable by.
	Differentiate(by Expr) (Expr, error)

	String() string

	// Name is the variable name, or "" for every other node.
	Name() string

	Children() []Expr
}

// folded returns the closed-form value of e, if it has one.
func folded(e Expr) (float64, bool) {
	v, ok, err := e.Value(nil)
	if err != nil || !ok {
		return 0, false
	}
	return v, true
}

// foldConst wraps v as a constant unless it is not finite.
func foldConst(v float64) (Expr, bool) {
	c, err := NewConst(v)
	if err != nil {
		return nil, false
	}
	return c, true
}

// targetName extracts the name of a differentiation target.
func targetName(by Expr) (string, error) {
	if by == nil || by.Name() == "" {
		return "", fmt.Errorf("%w: differentiation target has no name", ErrNotDifferentiable)
	}
	return by.Name(), nil
}

// Must panics if err is non-nil and returns e otherwise.
func Must(e Expr, err error) Expr {
	if err != nil {
		panic(err)
	}
	return e
}
