package mx

import (
	"encoding/json"
	"fmt"
	"math"
)

// ============================================================
// JSON Serialization
// ============================================================
//
// Expressions are encoded as tagged objects:
//
//	{"type":"const","value":2.5}
//	{"type":"var","name":"x"}
//	{"type":"add","args":[<expr>,<expr>]}        also "mul", "div"
//	{"type":"pow","base":<expr>,"exp":3}
//	{"type":"sin","arg":<expr>}                  also "cos", "ln", "exp"
//
// Decoding also accepts a bare number or string wherever an expression is
// expected, coerced as by Coerce. Matrices are {"rows":r,"cols":c,"cells":[...]}
// with the cells in row-major order.

// EncodeExpr returns the JSON object form of e.
func EncodeExpr(e Expr) (map[string]interface{}, error) {
	switch n := e.(type) {
	case *Const:
		return map[string]interface{}{"type": "const", "value": n.v}, nil
	case *Var:
		return map[string]interface{}{"type": "var", "name": n.name}, nil
	case *Pow:
		base, err := EncodeExpr(n.base)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"type": "pow", "base": base, "exp": n.n}, nil
	case *Func:
		return nil, fmt.Errorf("mx: opaque function %s cannot be serialized", n)
	case nil:
		return nil, fmt.Errorf("mx: nil expression")
	}
	kids := e.Children()
	enc := make([]interface{}, len(kids))
	for i, k := range kids {
		m, err := EncodeExpr(k)
		if err != nil {
			return nil, err
		}
		enc[i] = m
	}
	if len(enc) == 1 {
		return map[string]interface{}{"type": e.Kind().String(), "arg": enc[0]}, nil
	}
	return map[string]interface{}{"type": e.Kind().String(), "args": enc}, nil
}

func ToJSON(e Expr) (string, error) {
	m, err := EncodeExpr(e)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(m)
	return string(b), err
}

// ParseJSON decodes an expression from JSON text.
func ParseJSON(data []byte) (Expr, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("mx: invalid JSON: %w", err)
	}
	return DecodeExpr(raw)
}

// DecodeExpr rebuilds an expression from its decoded JSON form. Nodes are
// rebuilt through the combinators, so the result is folded.
func DecodeExpr(raw interface{}) (Expr, error) {
	switch v := raw.(type) {
	case float64, string:
		return Coerce(v)
	case map[string]interface{}:
		return FromJSON(v)
	}
	return nil, fmt.Errorf("mx: expression must be an object, number or string, got %T", raw)
}

func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("mx: expression must be an object")
	}
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("mx: field 'type' must be a non-empty string")
	}

	sub := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		e, err := DecodeExpr(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	pair := func() (Expr, Expr, error) {
		raw, ok := data["args"].([]interface{})
		if !ok || len(raw) != 2 {
			return nil, nil, fmt.Errorf("%s: 'args' must be an array of two expressions", typ)
		}
		a, err := DecodeExpr(raw[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%s: args[0]: %w", typ, err)
		}
		b, err := DecodeExpr(raw[1])
		if err != nil {
			return nil, nil, fmt.Errorf("%s: args[1]: %w", typ, err)
		}
		return a, b, nil
	}

	switch typ {
	case "const":
		v, ok := data["value"].(float64)
		if !ok {
			return nil, fmt.Errorf("const: 'value' must be a number")
		}
		return constExpr(v)

	case "var":
		name, ok := data["name"].(string)
		if !ok {
			return nil, fmt.Errorf("var: 'name' must be a string")
		}
		return varExpr(name)

	case "add", "mul", "div":
		a, b, err := pair()
		if err != nil {
			return nil, err
		}
		switch typ {
		case "add":
			return AddOf(a, b), nil
		case "mul":
			return MulOf(a, b), nil
		}
		return DivOf(a, b)

	case "pow":
		base, err := sub("base")
		if err != nil {
			return nil, err
		}
		exp, err := sub("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp)

	case "sin", "cos", "ln", "exp", "tan":
		arg, err := sub("arg")
		if err != nil {
			return nil, err
		}
		switch typ {
		case "sin":
			return SinOf(arg), nil
		case "cos":
			return CosOf(arg), nil
		case "ln":
			return LnOf(arg)
		case "tan":
			return TanOf(arg)
		}
		return ExpOf(arg), nil
	}
	return nil, fmt.Errorf("mx: unknown expression type: %s", typ)
}

// ============================================================
// Matrix JSON
// ============================================================

func EncodeMatrix(m *Matrix) (map[string]interface{}, error) {
	cells := make([]interface{}, 0, m.Len())
	for _, e := range m.cells() {
		enc, err := EncodeExpr(e)
		if err != nil {
			return nil, err
		}
		cells = append(cells, enc)
	}
	return map[string]interface{}{"rows": m.rows, "cols": m.cols, "cells": cells}, nil
}

func DecodeMatrix(raw interface{}) (*Matrix, error) {
	data, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("mx: matrix must be an object")
	}
	rows, ok1 := data["rows"].(float64)
	cols, ok2 := data["cols"].(float64)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("mx: matrix needs numeric 'rows' and 'cols'")
	}
	cells, ok := data["cells"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("mx: matrix 'cells' must be an array")
	}
	if rows != math.Trunc(rows) || cols != math.Trunc(cols) || rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: %vx%v", ErrInvalidDimensions, rows, cols)
	}
	// Check the size against the cells before anything is allocated.
	if n := float64(len(cells)); rows > n || cols > n || rows*cols != n {
		return nil, fmt.Errorf("%w: %vx%v matrix needs %v cells, got %d", ErrDimensionMismatch, rows, cols, rows*cols, len(cells))
	}
	exprs := make([]any, len(cells))
	for i, c := range cells {
		e, err := DecodeExpr(c)
		if err != nil {
			return nil, fmt.Errorf("mx: cells[%d]: %w", i, err)
		}
		exprs[i] = e
	}
	return MatrixOf(int(rows), int(cols), exprs...)
}
