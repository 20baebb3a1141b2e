package mx

import (
	"fmt"
	"math"
)

// ============================================================
// Derivatives by name, higher orders and vector calculus
// ============================================================

// Diff differentiates e with respect to the variable called name.
func Diff(e Expr, name string) (Expr, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty variable name", ErrNotDifferentiable)
	}
	return e.Differentiate(S(name))
}

// DiffN returns the n-th derivative of e with respect to name.
func DiffN(e Expr, name string, n int) (Expr, error) {
	if n < 0 {
		return nil, fmt.Errorf("mx: negative derivative order %d", n)
	}
	var err error
	for i := 0; i < n; i++ {
		if e, err = Diff(e, name); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Gradient returns the partial derivatives of e as a column vector.
func Gradient(e Expr, names []string) (*Matrix, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: gradient needs at least one variable", ErrInvalidDimensions)
	}
	g := newMatrix(len(names), 1)
	for i, name := range names {
		d, err := Diff(e, name)
		if err != nil {
			return nil, err
		}
		g.data[i][0] = d
	}
	return g, nil
}

// Jacobian returns the len(exprs)×len(names) matrix of partial derivatives.
func Jacobian(exprs []Expr, names []string) (*Matrix, error) {
	if len(exprs) == 0 || len(names) == 0 {
		return nil, fmt.Errorf("%w: jacobian of %d expressions in %d variables", ErrInvalidDimensions, len(exprs), len(names))
	}
	j := newMatrix(len(exprs), len(names))
	for r, e := range exprs {
		for c, name := range names {
			d, err := Diff(e, name)
			if err != nil {
				return nil, err
			}
			j.data[r][c] = d
		}
	}
	return j, nil
}

// Hessian returns the square matrix of second partial derivatives, the
// Jacobian of the gradient.
func Hessian(e Expr, names []string) (*Matrix, error) {
	g, err := Gradient(e, names)
	if err != nil {
		return nil, err
	}
	return Jacobian(g.cells(), names)
}

// Laplacian returns the sum of the pure second partial derivatives.
func Laplacian(e Expr, names []string) (Expr, error) {
	h, err := Hessian(e, names)
	if err != nil {
		return nil, err
	}
	return h.Trace()
}

// ============================================================
// Numerical derivative
// ============================================================

// EstimateDerivative approximates de/dby at b by the central difference
// with step h. A variable missing from b is taken to be 0.
func EstimateDerivative(e, by Expr, b Bindings, h float64) (float64, bool, error) {
	name, err := targetName(by)
	if err != nil {
		return 0, false, err
	}
	if h == 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, false, fmt.Errorf("mx: invalid step %v", h)
	}
	shifted := make(Bindings, len(b)+1)
	for k, v := range b {
		shifted[k] = v
	}
	x := b[name]

	shifted[name] = x + h
	hi, ok, err := e.Value(shifted)
	if err != nil || !ok {
		return 0, false, err
	}
	shifted[name] = x - h
	lo, ok, err := e.Value(shifted)
	if err != nil || !ok {
		return 0, false, err
	}
	return (hi - lo) / (2 * h), true, nil
}

// Estimator wraps EstimateDerivative as an opaque expression, so a symbolic
// derivative can be compared against it with Equal. The estimate is
// undetermined while by is unbound or where it fails.
func Estimator(e, by Expr, h float64) *Func {
	label := fmt.Sprintf("estimate(d%s/d%s)", e, by)
	return Fn(label, func(b Bindings) (float64, bool) {
		if _, bound := b[by.Name()]; !bound {
			return 0, false
		}
		v, ok, err := EstimateDerivative(e, by, b, h)
		if err != nil {
			return 0, false
		}
		return v, ok
	})
}
