package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mx "github.com/njchilds90/gomx"
	"github.com/njchilds90/gomx/nn"
)

func floats(t *testing.T, m *mx.Matrix) []float64 {
	t.Helper()
	var out []float64
	m.Map(func(e mx.Expr, _, _ int) {
		v, ok, err := e.Value(nil)
		require.NoError(t, err)
		require.True(t, ok, "cell %s is undetermined", e)
		out = append(out, v)
	})
	return out
}

func TestNormalize(t *testing.T) {
	vec, err := mx.Vector(3, 5)
	require.NoError(t, err)

	out, err := nn.Normalize(vec)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Rows())
	assert.Equal(t, 1, out.Cols())

	got := floats(t, out)
	assert.InDelta(t, 3.0/8, got[0], 1e-12)
	assert.InDelta(t, 5.0/8, got[1], 1e-12)
}

func TestNormalizeSymbolic(t *testing.T) {
	vec, err := mx.Vector("x", "y")
	require.NoError(t, err)

	out, err := nn.Normalize(vec)
	require.NoError(t, err)

	v, err := out.Value(mx.Bindings{"x": 1, "y": 3})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, floats(t, v), 1e-12)
}

func TestNormalizeZeroSum(t *testing.T) {
	vec, err := mx.Vector(2, -2)
	require.NoError(t, err)

	_, err = nn.Normalize(vec)
	assert.ErrorIs(t, err, mx.ErrDivisionByZero)
}

func TestSoftmax(t *testing.T) {
	vec, err := mx.Vector(1, 2, 3)
	require.NoError(t, err)

	out, err := nn.Softmax(vec)
	require.NoError(t, err)

	got := floats(t, out)
	sum := 0.0
	for _, v := range got {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Less(t, got[0], got[1])
	assert.Less(t, got[1], got[2])
	assert.InDelta(t, 0.6652409557748219, got[2], 1e-12)
}

func TestNotAVector(t *testing.T) {
	m, err := mx.MatrixOf(2, 2, 1, 2, 3, 4)
	require.NoError(t, err)

	_, err = nn.Normalize(m)
	assert.ErrorIs(t, err, mx.ErrNotAVector)
	_, err = nn.Softmax(m)
	assert.ErrorIs(t, err, mx.ErrNotAVector)
	_, _, err = nn.Argmax(m, nil)
	assert.ErrorIs(t, err, mx.ErrNotAVector)
}

func TestArgmax(t *testing.T) {
	col, err := mx.Vector(1, "x", 3)
	require.NoError(t, err)

	r, c, err := nn.Argmax(col, mx.Bindings{"x": 7})
	require.NoError(t, err)
	assert.Equal(t, 1, r)
	assert.Equal(t, 0, c)

	row := col.Transpose()
	r, c, err = nn.Argmax(row, mx.Bindings{"x": -7})
	require.NoError(t, err)
	assert.Equal(t, 0, r)
	assert.Equal(t, 2, c)
}

func TestArgmaxTie(t *testing.T) {
	vec, err := mx.Vector(4, 4, 1)
	require.NoError(t, err)

	r, _, err := nn.Argmax(vec, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, r)
}

func TestArgmaxUndetermined(t *testing.T) {
	vec, err := mx.Vector(1, "x")
	require.NoError(t, err)

	_, _, err = nn.Argmax(vec, nil)
	assert.ErrorIs(t, err, mx.ErrUndetermined)
}
