package mx_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mx "github.com/njchilds90/gomx"
)

func TestToJSON(t *testing.T) {
	x := mx.S("x")
	e := mx.AddOf(mx.MulOf(mx.N(2), x), mx.Must(mx.PowOf(mx.SinOf(x), mx.N(2))))

	s, err := mx.ToJSON(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "add",
		"args": [
			{"type": "mul", "args": [{"type": "const", "value": 2}, {"type": "var", "name": "x"}]},
			{"type": "pow", "base": {"type": "sin", "arg": {"type": "var", "name": "x"}}, "exp": 2}
		]
	}`, s)

	back, err := mx.ParseJSON([]byte(s))
	require.NoError(t, err)
	assert.Equal(t, e.String(), back.String())

	_, err = mx.ToJSON(mx.Fn("f", nil))
	assert.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"x"`, "x"},
		{`4`, "4"},
		{`{"type":"div","args":["x",{"type":"ln","arg":"y"}]}`, "(x / ln(y))"},
		{`{"type":"tan","arg":"x"}`, "(sin(x) / cos(x))"},
		{`{"type":"exp","arg":{"type":"ln","arg":"x"}}`, "x"},
		{`{"type":"mul","args":[2,3]}`, "6"},
		{`{"type":"cos","arg":"t"}`, "cos(t)"},
	}
	for _, tt := range tests {
		e, err := mx.ParseJSON([]byte(tt.in))
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, e.String(), tt.in)
	}
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		in      string
		wantErr error
	}{
		{`{"type":"div","args":["x",0]}`, mx.ErrDivisionByZero},
		{`{"type":"pow","base":"x","exp":"y"}`, mx.ErrInvalidExponent},
		{`{"type":"ln","arg":-2}`, mx.ErrInvalidDomain},
		{`{"type":"var","name":""}`, mx.ErrInvalidVariableName},
	}
	for _, tt := range tests {
		_, err := mx.ParseJSON([]byte(tt.in))
		assert.ErrorIs(t, err, tt.wantErr, tt.in)
	}

	for _, in := range []string{
		`{`,
		`true`,
		`{}`,
		`{"type":"integral","arg":"x"}`,
		`{"type":"add","args":["x"]}`,
		`{"type":"sin"}`,
		`{"type":"const","value":"2"}`,
		`{"type":"var"}`,
	} {
		_, err := mx.ParseJSON([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestMatrixJSON(t *testing.T) {
	m, err := mx.MatrixOf(2, 2, 1, "x", mx.SinOf(mx.S("y")), 4)
	require.NoError(t, err)

	enc, err := mx.EncodeMatrix(m)
	require.NoError(t, err)
	data, err := json.Marshal(enc)
	require.NoError(t, err)

	var raw interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	back, err := mx.DecodeMatrix(raw)
	require.NoError(t, err)
	assert.Equal(t, m.String(), back.String())

	_, err = mx.DecodeMatrix(map[string]interface{}{"rows": 2.0, "cols": 2.0, "cells": []interface{}{1.0}})
	assert.ErrorIs(t, err, mx.ErrDimensionMismatch)

	_, err = mx.DecodeMatrix(map[string]interface{}{"rows": 0.0, "cols": 2.0, "cells": []interface{}{}})
	assert.ErrorIs(t, err, mx.ErrInvalidDimensions)

	_, err = mx.DecodeMatrix([]interface{}{})
	assert.Error(t, err)
}

func TestDecodeMatrixSize(t *testing.T) {
	decode := func(rows, cols float64, cells ...interface{}) error {
		if cells == nil {
			cells = []interface{}{}
		}
		_, err := mx.DecodeMatrix(map[string]interface{}{"rows": rows, "cols": cols, "cells": cells})
		return err
	}

	assert.ErrorIs(t, decode(2.9, 1, 1.0, 2.0), mx.ErrInvalidDimensions)
	assert.ErrorIs(t, decode(1, 0.5, 1.0), mx.ErrInvalidDimensions)
	assert.ErrorIs(t, decode(-2, -1, 1.0, 2.0), mx.ErrInvalidDimensions)

	// Oversized grids fail on the cell count without being allocated.
	assert.ErrorIs(t, decode(100000, 100000), mx.ErrDimensionMismatch)
	assert.ErrorIs(t, decode(1e300, 1e300, 1.0), mx.ErrDimensionMismatch)
	assert.ErrorIs(t, decode(3, 1, 1.0, 2.0, 3.0, 4.0), mx.ErrDimensionMismatch)

	assert.NoError(t, decode(2, 1, 1.0, 2.0))
}

func TestMatrixOfChecksCellsFirst(t *testing.T) {
	_, err := mx.MatrixOf(100000, 100000)
	assert.ErrorIs(t, err, mx.ErrDimensionMismatch)

	_, err = mx.MatrixOf(math.MaxInt, 2, 1, 2)
	assert.ErrorIs(t, err, mx.ErrDimensionMismatch)

	_, err = mx.MatrixOf(0, 2)
	assert.ErrorIs(t, err, mx.ErrInvalidDimensions)
}
