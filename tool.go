package mx

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// ToolNames lists the tools HandleToolCall understands.
func ToolNames() []string {
	names := make([]string, 0, len(toolHandlers))
	for name := range toolHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type toolParams map[string]interface{}

func (p toolParams) expr(key string) (Expr, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	e, err := DecodeExpr(v)
	if err != nil {
		return nil, fmt.Errorf("param %s: %w", key, err)
	}
	return e, nil
}

func (p toolParams) matrix(key string) (*Matrix, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	m, err := DecodeMatrix(v)
	if err != nil {
		return nil, fmt.Errorf("param %s: %w", key, err)
	}
	return m, nil
}

func (p toolParams) str(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing param: %s", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("param %s must be a non-empty string", key)
	}
	return s, nil
}

func (p toolParams) number(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("param %s must be a number", key)
	}
	return f, nil
}

// integer reads a whole number in [lo, hi].
func (p toolParams) integer(key string, def, lo, hi int) (int, error) {
	f, err := p.number(key, float64(def))
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < float64(lo) || f > float64(hi) {
		return 0, fmt.Errorf("param %s must be a whole number in [%d, %d], got %v", key, lo, hi, f)
	}
	return int(f), nil
}

func toBindings(key string, v interface{}) (Bindings, error) {
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("param %s must be an object of numbers", key)
	}
	b := make(Bindings, len(raw))
	for name, x := range raw {
		f, ok := x.(float64)
		if !ok {
			return nil, fmt.Errorf("param %s.%s must be a number", key, name)
		}
		b[name] = f
	}
	return b, nil
}

func (p toolParams) bindings(key string) (Bindings, error) {
	v, ok := p[key]
	if !ok {
		return Bindings{}, nil
	}
	return toBindings(key, v)
}

func (p toolParams) bindingsList(key string) ([]Bindings, bool, error) {
	v, ok := p[key]
	if !ok {
		return nil, false, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, true, fmt.Errorf("param %s must be an array", key)
	}
	out := make([]Bindings, len(raw))
	for i, r := range raw {
		b, err := toBindings(fmt.Sprintf("%s[%d]", key, i), r)
		if err != nil {
			return nil, true, err
		}
		out[i] = b
	}
	return out, true, nil
}

func exprResponse(e Expr) ToolResponse {
	m, err := EncodeExpr(e)
	if err != nil {
		return ToolResponse{String: e.String(), Error: err.Error()}
	}
	return ToolResponse{Result: m, String: e.String()}
}

func matrixResponse(m *Matrix) ToolResponse {
	enc, err := EncodeMatrix(m)
	if err != nil {
		return ToolResponse{String: m.String(), Error: err.Error()}
	}
	return ToolResponse{Result: enc, String: m.String()}
}

// valueResult is a number, or nil when undetermined.
func valueResult(v float64, ok bool) interface{} {
	if !ok {
		return nil
	}
	return v
}

type toolHandler func(ctx context.Context, p toolParams, opts []Option) (ToolResponse, error)

var toolHandlers map[string]toolHandler

func init() {
	toolHandlers = map[string]toolHandler{
		"value":               toolValue,
		"differentiate":       toolDifferentiate,
		"equal":               toolEqual,
		"free_variables":      toolFreeVariables,
		"substitute":          toolSubstitute,
		"estimate_derivative": toolEstimateDerivative,
		"matrix_multiply":     toolMatrixMultiply,
		"matrix_dot":          toolMatrixDot,
		"matrix_transpose":    toolMatrixTranspose,
		"matrix_value":        toolMatrixValue,
		"mcp_spec":            toolSpec,
	}
}

// HandleToolCall runs one tool request. Failures are reported in
// ToolResponse.Error, never as a panic. opts apply to the "equal" tool.
func HandleToolCall(ctx context.Context, req ToolRequest, opts ...Option) (resp ToolResponse) {
	h, ok := toolHandlers[req.Tool]
	if !ok {
		return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
	}
	defer func() {
		if r := recover(); r != nil {
			resp = ToolResponse{Error: fmt.Sprintf("%s: %v", req.Tool, r)}
		}
	}()
	resp, err := h(ctx, toolParams(req.Params), opts)
	if err != nil {
		return ToolResponse{Error: err.Error()}
	}
	return resp
}

func toolValue(ctx context.Context, p toolParams, _ []Option) (ToolResponse, error) {
	e, err := p.expr("expr")
	if err != nil {
		return ToolResponse{}, err
	}
	points, batch, err := p.bindingsList("bindings_list")
	if err != nil {
		return ToolResponse{}, err
	}
	if batch {
		results, err := EvaluateBatch(ctx, e, points)
		if err != nil {
			return ToolResponse{}, err
		}
		values := make([]interface{}, len(results))
		for i, r := range results {
			values[i] = valueResult(r.Value, r.OK)
		}
		return ToolResponse{Result: values, String: e.String()}, nil
	}
	b, err := p.bindings("bindings")
	if err != nil {
		return ToolResponse{}, err
	}
	v, ok, err := e.Value(b)
	if err != nil {
		return ToolResponse{}, err
	}
	return ToolResponse{Result: valueResult(v, ok), String: e.String()}, nil
}

func toolDifferentiate(_ context.Context, p toolParams, opts []Option) (ToolResponse, error) {
	e, err := p.expr("expr")
	if err != nil {
		return ToolResponse{}, err
	}
	name, err := p.str("var")
	if err != nil {
		return ToolResponse{}, err
	}
	order, err := p.integer("order", 1, 0, resolve(opts).MaxOrder)
	if err != nil {
		return ToolResponse{}, err
	}
	d, err := DiffN(e, name, order)
	if err != nil {
		return ToolResponse{}, err
	}
	return exprResponse(d), nil
}

func toolEqual(_ context.Context, p toolParams, opts []Option) (ToolResponse, error) {
	a, err := p.expr("a")
	if err != nil {
		return ToolResponse{}, err
	}
	b, err := p.expr("b")
	if err != nil {
		return ToolResponse{}, err
	}
	opts = append([]Option(nil), opts...)
	if tol, ok := p["tolerance"].(float64); ok {
		opts = append(opts, WithTolerance(tol))
	}
	if _, ok := p["samples"]; ok {
		n, err := p.integer("samples", 0, 1, resolve(opts).MaxSamples)
		if err != nil {
			return ToolResponse{}, err
		}
		opts = append(opts, WithSamples(n))
	}
	eq, err := Equal(a, b, opts...)
	if err != nil {
		return ToolResponse{}, err
	}
	return ToolResponse{Result: eq, String: fmt.Sprintf("%s == %s: %t", a, b, eq)}, nil
}

func toolFreeVariables(_ context.Context, p toolParams, _ []Option) (ToolResponse, error) {
	e, err := p.expr("expr")
	if err != nil {
		return ToolResponse{}, err
	}
	names := FreeNames(e)
	if names == nil {
		names = []string{}
	}
	return ToolResponse{Result: names}, nil
}

func toolSubstitute(_ context.Context, p toolParams, _ []Option) (ToolResponse, error) {
	e, err := p.expr("expr")
	if err != nil {
		return ToolResponse{}, err
	}
	raw, ok := p["replacements"].(map[string]interface{})
	if !ok {
		return ToolResponse{}, fmt.Errorf("param replacements must be an object")
	}
	repl := make(map[string]Expr, len(raw))
	for name, v := range raw {
		r, err := DecodeExpr(v)
		if err != nil {
			return ToolResponse{}, fmt.Errorf("replacements.%s: %w", name, err)
		}
		repl[name] = r
	}
	out, err := Substitute(e, repl)
	if err != nil {
		return ToolResponse{}, err
	}
	return exprResponse(out), nil
}

func toolEstimateDerivative(_ context.Context, p toolParams, _ []Option) (ToolResponse, error) {
	e, err := p.expr("expr")
	if err != nil {
		return ToolResponse{}, err
	}
	name, err := p.str("var")
	if err != nil {
		return ToolResponse{}, err
	}
	b, err := p.bindings("bindings")
	if err != nil {
		return ToolResponse{}, err
	}
	h, err := p.number("h", 1e-5)
	if err != nil {
		return ToolResponse{}, err
	}
	v, ok, err := EstimateDerivative(e, S(name), b, h)
	if err != nil {
		return ToolResponse{}, err
	}
	return ToolResponse{Result: valueResult(v, ok)}, nil
}

func toolMatrixMultiply(_ context.Context, p toolParams, _ []Option) (ToolResponse, error) {
	a, err := p.matrix("a")
	if err != nil {
		return ToolResponse{}, err
	}
	// b is a matrix when it decodes as one, otherwise a scalar expression.
	var b any
	if m, err := p.matrix("b"); err == nil {
		b = m
	} else if b, err = p.expr("b"); err != nil {
		return ToolResponse{}, err
	}
	out, err := a.Multiply(b)
	if err != nil {
		return ToolResponse{}, err
	}
	return matrixResponse(out), nil
}

func toolMatrixDot(_ context.Context, p toolParams, _ []Option) (ToolResponse, error) {
	a, err := p.matrix("a")
	if err != nil {
		return ToolResponse{}, err
	}
	b, err := p.matrix("b")
	if err != nil {
		return ToolResponse{}, err
	}
	d, err := a.Dot(b)
	if err != nil {
		return ToolResponse{}, err
	}
	return exprResponse(d), nil
}

func toolMatrixTranspose(_ context.Context, p toolParams, _ []Option) (ToolResponse, error) {
	m, err := p.matrix("matrix")
	if err != nil {
		return ToolResponse{}, err
	}
	return matrixResponse(m.Transpose()), nil
}

func toolMatrixValue(_ context.Context, p toolParams, _ []Option) (ToolResponse, error) {
	m, err := p.matrix("matrix")
	if err != nil {
		return ToolResponse{}, err
	}
	b, err := p.bindings("bindings")
	if err != nil {
		return ToolResponse{}, err
	}
	v, err := m.Value(b)
	if err != nil {
		return ToolResponse{}, err
	}
	return matrixResponse(v), nil
}

// ============================================================
// Tool schema
// ============================================================

func toolSpec(context.Context, toolParams, []Option) (ToolResponse, error) {
	return ToolResponse{String: MCPToolSpec()}, nil
}

func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("value", "Evaluate an expression. Optional bindings (object) or bindings_list (array of objects)", []string{"expr"}, map[string]string{"expr": "object", "bindings": "object", "bindings_list": "array"}),
		ts("differentiate", "Symbolic derivative d/dvar. Optional order (integer)", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string", "order": "integer"}),
		ts("equal", "Numerical equivalence by random sampling", []string{"a", "b"}, map[string]string{"a": "object", "b": "object", "tolerance": "number", "samples": "integer"}),
		ts("free_variables", "Free variable names in discovery order", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("substitute", "Replace variables by expressions", []string{"expr", "replacements"}, map[string]string{"expr": "object", "replacements": "object"}),
		ts("estimate_derivative", "Central-difference derivative estimate", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string", "bindings": "object", "h": "number"}),
		ts("matrix_multiply", "Matrix product a*b; b may be a matrix, vector or scalar expression", []string{"a", "b"}, map[string]string{"a": "object", "b": "object"}),
		ts("matrix_dot", "Dot product of two vectors", []string{"a", "b"}, map[string]string{"a": "object", "b": "object"}),
		ts("matrix_transpose", "Transpose a matrix", []string{"matrix"}, map[string]string{"matrix": "object"}),
		ts("matrix_value", "Evaluate every cell of a matrix", []string{"matrix"}, map[string]string{"matrix": "object", "bindings": "object"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
