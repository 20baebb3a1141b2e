// Package nn holds small neural-network helpers over mx vectors.
package nn

import (
	"fmt"

	mx "github.com/njchilds90/gomx"
)

func vector(m *mx.Matrix) error {
	if m == nil || !m.IsVector() {
		return fmt.Errorf("%w: expected a vector", mx.ErrNotAVector)
	}
	return nil
}

// Normalize divides every cell of vec by the sum of its cells, so [3, 5]
// becomes [3/8, 5/8].
func Normalize(vec *mx.Matrix) (*mx.Matrix, error) {
	if err := vector(vec); err != nil {
		return nil, err
	}
	sum := vec.Sum()
	return vec.Apply(func(e mx.Expr, _, _ int) (mx.Expr, error) { return mx.DivOf(e, sum) })
}

// Softmax returns exp(cell) / Σ exp(cell) for every cell of vec.
func Softmax(vec *mx.Matrix) (*mx.Matrix, error) {
	if err := vector(vec); err != nil {
		return nil, err
	}
	exps, err := vec.Apply(func(e mx.Expr, _, _ int) (mx.Expr, error) { return mx.ExpOf(e), nil })
	if err != nil {
		return nil, err
	}
	return Normalize(exps)
}

// Argmax evaluates vec under b and returns the position of its largest
// cell. The first position wins a tie. Every cell must be determined.
func Argmax(vec *mx.Matrix, b mx.Bindings) (row, col int, err error) {
	if err := vector(vec); err != nil {
		return 0, 0, err
	}
	best := 0.0
	found := false
	vec.Map(func(e mx.Expr, i, j int) {
		if err != nil {
			return
		}
		v, ok, verr := e.Value(b)
		switch {
		case verr != nil:
			err = fmt.Errorf("cell [%d,%d]: %w", i, j, verr)
		case !ok:
			err = fmt.Errorf("%w: cell [%d,%d] is %s", mx.ErrUndetermined, i, j, e)
		case !found || v > best:
			best, row, col, found = v, i, j, true
		}
	})
	if err != nil {
		return 0, 0, err
	}
	return row, col, nil
}
