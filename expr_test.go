package mx_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mx "github.com/njchilds90/gomx"
)

// ============================================================
// Construction
// ============================================================

func TestConstAndVar(t *testing.T) {
	c, err := mx.NewConst(2.5)
	require.NoError(t, err)
	assert.Equal(t, mx.KindConst, c.Kind())
	assert.Equal(t, "2.5", c.String())
	assert.Equal(t, 2.5, c.Float64())

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := mx.NewConst(bad)
		assert.ErrorIs(t, err, mx.ErrInvalidConstant)
	}
	assert.Panics(t, func() { mx.N(math.NaN()) })

	v, err := mx.NewVar("x")
	require.NoError(t, err)
	assert.Equal(t, "x", v.Name())
	assert.Equal(t, mx.KindVar, v.Kind())

	_, err = mx.NewVar("")
	assert.ErrorIs(t, err, mx.ErrInvalidVariableName)
	assert.Panics(t, func() { mx.S("") })
}

func TestOptimizationLaws(t *testing.T) {
	y := mx.S("y")

	zero := mx.MulOf(mx.N(0), y)
	require.Equal(t, mx.KindConst, zero.Kind())
	v, ok, err := zero.Value(nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	assert.Same(t, y, mx.MulOf(mx.N(1), y))
	assert.Same(t, y, mx.MulOf(y, mx.N(1)))
	assert.Same(t, y, mx.AddOf(mx.N(0), y))
	assert.Same(t, y, mx.AddOf(y, mx.N(0)))

	d, err := mx.DivOf(y, mx.N(1))
	require.NoError(t, err)
	assert.Same(t, y, d)

	p, err := mx.PowOf(y, mx.N(1))
	require.NoError(t, err)
	assert.Same(t, y, p)

	p, err = mx.PowOf(y, mx.N(0))
	require.NoError(t, err)
	assert.Equal(t, "1", p.String())
}

func TestConstantFolding(t *testing.T) {
	tests := []struct {
		name string
		expr mx.Expr
		want float64
	}{
		{"add", mx.AddOf(mx.N(2), mx.N(3)), 5},
		{"mul", mx.MulOf(mx.N(2), mx.N(3)), 6},
		{"sub", mx.SubOf(mx.N(2), mx.N(3)), -1},
		{"div", mx.Must(mx.DivOf(mx.N(1), mx.N(4))), 0.25},
		{"pow", mx.Must(mx.PowOf(mx.N(3), mx.N(3))), 27},
		{"sin", mx.SinOf(mx.N(0)), 0},
		{"cos", mx.CosOf(mx.N(0)), 1},
		{"exp", mx.ExpOf(mx.N(0)), 1},
		{"ln", mx.Must(mx.LnOf(mx.N(1))), 0},
		{"tan", mx.Must(mx.TanOf(mx.N(0))), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, mx.KindConst, tt.expr.Kind(), "got %s", tt.expr)
			v, ok, err := tt.expr.Value(nil)
			require.NoError(t, err)
			require.True(t, ok)
			assert.InDelta(t, tt.want, v, 1e-15)
		})
	}
}

func TestCancellation(t *testing.T) {
	x := mx.S("x")
	assert.Same(t, x, mx.Must(mx.LnOf(mx.ExpOf(x))))
	assert.Same(t, x, mx.ExpOf(mx.Must(mx.LnOf(x))))
}

func TestStringRendering(t *testing.T) {
	x, y := mx.S("x"), mx.S("y")
	tests := []struct {
		expr mx.Expr
		want string
	}{
		{mx.AddOf(x, y), "(x + y)"},
		{mx.MulOf(x, y), "(x * y)"},
		{mx.SubOf(x, y), "((-1 * y) + x)"},
		{mx.Must(mx.DivOf(x, y)), "(x / y)"},
		{mx.Must(mx.PowOf(x, mx.N(3))), "(x ^ 3)"},
		{mx.Must(mx.PowOf(x, mx.N(-0.5))), "(x ^ -0.5)"},
		{mx.SinOf(x), "sin(x)"},
		{mx.CosOf(mx.AddOf(x, mx.N(1))), "cos((x + 1))"},
		{mx.Must(mx.LnOf(x)), "ln(x)"},
		{mx.ExpOf(x), "exp(x)"},
		{mx.Must(mx.TanOf(x)), "(sin(x) / cos(x))"},
		{mx.Fn("", nil), "fn"},
		{mx.Fn("f", nil), "f"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.expr.String())
	}
}

// ============================================================
// Evaluation
// ============================================================

func TestValue(t *testing.T) {
	x, y := mx.S("x"), mx.S("y")
	e := mx.AddOf(mx.MulOf(mx.N(2), x), mx.SinOf(y))

	v, ok, err := e.Value(mx.Bindings{"x": 3, "y": 0})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 6.0, v)

	_, ok, err = e.Value(mx.Bindings{"x": 3})
	require.NoError(t, err)
	assert.False(t, ok, "unbound y must leave the value undetermined")

	_, ok, err = e.Value(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPowValue(t *testing.T) {
	p := mx.Must(mx.PowOf(mx.S("x"), mx.N(3)))
	v, ok, err := p.Value(mx.Bindings{"x": 10.1})
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1030.301, v, 1e-9)

	inv := mx.Must(mx.PowOf(mx.S("x"), mx.N(-1)))
	_, _, err = inv.Value(mx.Bindings{"x": 0})
	assert.ErrorIs(t, err, mx.ErrDivisionByZero)

	root := mx.Must(mx.PowOf(mx.S("x"), mx.N(0.5)))
	_, _, err = root.Value(mx.Bindings{"x": -4})
	assert.ErrorIs(t, err, mx.ErrInvalidDomain)
}

func TestFuncValue(t *testing.T) {
	f := mx.Fn("twice", func(b mx.Bindings) (float64, bool) {
		x, ok := b["x"]
		return 2 * x, ok
	})
	e := mx.AddOf(f, mx.N(1))

	v, ok, err := e.Value(mx.Bindings{"x": 4})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9.0, v)

	_, ok, err = e.Value(nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, mx.KindAdd, e.Kind(), "an opaque function never folds at construction")
}

func TestConcurrentReads(t *testing.T) {
	x := mx.S("x")
	shared := mx.MulOf(mx.SinOf(x), mx.ExpOf(x))
	e := mx.AddOf(shared, shared)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				v, ok, err := e.Value(mx.Bindings{"x": 1})
				assert.NoError(t, err)
				assert.True(t, ok)
				assert.InDelta(t, 2*math.Sin(1)*math.E, v, 1e-12)
				_, err = e.Differentiate(x)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

// ============================================================
// Errors
// ============================================================

func TestErrors(t *testing.T) {
	x := mx.S("x")

	_, err := mx.DivOf(x, mx.N(0))
	assert.ErrorIs(t, err, mx.ErrDivisionByZero)

	_, err = mx.DivOf(x, mx.N(1e-11))
	assert.ErrorIs(t, err, mx.ErrDivisionByZero)

	div := mx.Must(mx.DivOf(mx.N(1), x))
	_, _, err = div.Value(mx.Bindings{"x": 0})
	assert.ErrorIs(t, err, mx.ErrDivisionByZero)

	_, err = mx.LnOf(mx.N(-5))
	assert.ErrorIs(t, err, mx.ErrInvalidDomain)

	_, err = mx.LnOf(mx.N(0))
	assert.ErrorIs(t, err, mx.ErrInvalidDomain)

	ln := mx.Must(mx.LnOf(x))
	_, _, err = ln.Value(mx.Bindings{"x": -1})
	assert.ErrorIs(t, err, mx.ErrInvalidDomain)

	_, err = mx.PowOf(x, mx.S("y"))
	assert.ErrorIs(t, err, mx.ErrInvalidExponent)

	_, err = mx.PowOf(mx.N(0), mx.N(-2))
	assert.ErrorIs(t, err, mx.ErrDivisionByZero)

	_, err = mx.PowOf(mx.N(-8), mx.N(0.5))
	assert.ErrorIs(t, err, mx.ErrInvalidDomain)

	_, err = mx.TanOf(mx.N(math.Pi / 2))
	assert.ErrorIs(t, err, mx.ErrDivisionByZero)

	assert.Panics(t, func() { mx.Must(mx.DivOf(x, mx.N(0))) })
}

// ============================================================
// Differentiation
// ============================================================

func TestDifferentiateUnrelatedVariable(t *testing.T) {
	x, y := mx.S("x"), mx.S("y")
	exprs := []mx.Expr{
		mx.N(7),
		y,
		mx.AddOf(y, mx.N(3)),
		mx.MulOf(mx.SinOf(y), mx.ExpOf(y)),
		mx.Must(mx.DivOf(mx.CosOf(y), y)),
		mx.Must(mx.PowOf(y, mx.N(4))),
		mx.Must(mx.LnOf(y)),
	}
	for _, e := range exprs {
		d, err := e.Differentiate(x)
		require.NoError(t, err, e.String())
		v, ok, err := d.Value(mx.Bindings{"x": 1.5, "y": 2.5})
		require.NoError(t, err, e.String())
		require.True(t, ok, e.String())
		assert.Equal(t, 0.0, v, "d/dx %s = %s", e, d)
	}
}

func TestProductRule(t *testing.T) {
	x, y := mx.S("x"), mx.S("y")
	xy := mx.MulOf(x, y)

	dx, err := xy.Differentiate(x)
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, mx.FreeNames(dx))

	dy, err := xy.Differentiate(y)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, mx.FreeNames(dy))

	dxx, err := mx.MulOf(x, x).Differentiate(x)
	require.NoError(t, err)
	assert.Equal(t, mx.AddOf(x, x).String(), dxx.String())
}

func TestSumRule(t *testing.T) {
	x := mx.S("x")
	e := mx.AddOf(mx.AddOf(mx.AddOf(x, x), x), x)
	d, err := e.Differentiate(x)
	require.NoError(t, err)

	v, ok, err := d.Value(nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4.0, v)
}

func TestDerivativeRules(t *testing.T) {
	x := mx.S("x")
	at := mx.Bindings{"x": 0.7}
	tests := []struct {
		name string
		expr mx.Expr
		want float64
	}{
		{"sin", mx.SinOf(x), math.Cos(0.7)},
		{"cos", mx.CosOf(x), -math.Sin(0.7)},
		{"exp", mx.ExpOf(mx.MulOf(mx.N(2), x)), 2 * math.Exp(1.4)},
		{"ln", mx.Must(mx.LnOf(x)), 1 / 0.7},
		{"pow", mx.Must(mx.PowOf(x, mx.N(3))), 3 * 0.49},
		{"quotient", mx.Must(mx.DivOf(mx.N(1), x)), -1 / 0.49},
		{"constant divisor", mx.Must(mx.DivOf(x, mx.N(4))), 0.25},
		{"chain", mx.SinOf(mx.Must(mx.PowOf(x, mx.N(2)))), math.Cos(0.49) * 1.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := tt.expr.Differentiate(x)
			require.NoError(t, err)
			v, ok, err := d.Value(at)
			require.NoError(t, err)
			require.True(t, ok)
			assert.InDelta(t, tt.want, v, 1e-12, "d/dx %s = %s", tt.expr, d)
		})
	}
}

func TestDifferentiateTarget(t *testing.T) {
	x := mx.S("x")
	_, err := x.Differentiate(mx.N(2))
	assert.ErrorIs(t, err, mx.ErrNotDifferentiable)

	_, err = mx.SinOf(x).Differentiate(nil)
	assert.ErrorIs(t, err, mx.ErrNotDifferentiable)

	_, err = mx.Fn("f", nil).Differentiate(x)
	assert.ErrorIs(t, err, mx.ErrNotDifferentiable)

	_, err = mx.AddOf(x, mx.Fn("f", nil)).Differentiate(x)
	assert.ErrorIs(t, err, mx.ErrNotDifferentiable)
}

func TestDifferentiateDoesNotMutate(t *testing.T) {
	x := mx.S("x")
	e := mx.MulOf(mx.SinOf(x), mx.Must(mx.PowOf(x, mx.N(2))))
	before := e.String()
	_, err := e.Differentiate(x)
	require.NoError(t, err)
	assert.Equal(t, before, e.String())
}
