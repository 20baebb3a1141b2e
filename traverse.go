package mx

import "fmt"

// ============================================================
// Free variables
// ============================================================

// Walk calls fn for e and its descendants in pre-order. Returning false
// from fn skips the node's children.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range e.Children() {
		Walk(c, fn)
	}
}

// FreeVariables returns the variables reachable from exprs in order of first
// discovery, one per name.
func FreeVariables(exprs ...Expr) []*Var {
	seen := map[string]struct{}{}
	var out []*Var
	for _, e := range exprs {
		Walk(e, func(n Expr) bool {
			v, ok := n.(*Var)
			if !ok {
				return true
			}
			if _, dup := seen[v.name]; !dup {
				seen[v.name] = struct{}{}
				out = append(out, v)
			}
			return false
		})
	}
	return out
}

// FreeNames is FreeVariables reduced to names.
func FreeNames(exprs ...Expr) []string {
	vars := FreeVariables(exprs...)
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.name
	}
	return names
}

// ============================================================
// Substitution
// ============================================================

// Substitute returns e with every variable named in repl replaced by its
// expression. e is never modified; unchanged subtrees are shared with the
// result. The new tree goes through the combinators again, so it can fold
// or fail the same way fresh construction would. A nil replacement is
// rejected with ErrNilExpr.
func Substitute(e Expr, repl map[string]Expr) (Expr, error) {
	for name, r := range repl {
		if r == nil {
			return nil, fmt.Errorf("%w: replacement for %s", ErrNilExpr, name)
		}
	}
	if len(repl) == 0 {
		return e, nil
	}
	return substitute(e, repl)
}

func substitute(e Expr, repl map[string]Expr) (Expr, error) {
	switch n := e.(type) {
	case *Var:
		if r, ok := repl[n.name]; ok {
			return r, nil
		}
		return n, nil
	case *Const, *Func:
		return e, nil
	}
	kids := e.Children()
	subs := make([]Expr, len(kids))
	changed := false
	for i, k := range kids {
		s, err := substitute(k, repl)
		if err != nil {
			return nil, err
		}
		subs[i] = s
		changed = changed || s != k
	}
	if !changed {
		return e, nil
	}
	return rebuild(e, subs)
}

// SubstituteValues replaces the bound variables of e with constants.
func SubstituteValues(e Expr, b Bindings) (Expr, error) {
	repl := make(map[string]Expr, len(b))
	for name, v := range b {
		c, err := NewConst(v)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", name, err)
		}
		repl[name] = c
	}
	return Substitute(e, repl)
}

// rebuild constructs a node of e's kind over new children.
func rebuild(e Expr, kids []Expr) (Expr, error) {
	switch n := e.(type) {
	case *Add:
		return AddOf(kids[0], kids[1]), nil
	case *Mul:
		return MulOf(kids[0], kids[1]), nil
	case *Div:
		return DivOf(kids[0], kids[1])
	case *Pow:
		return PowOf(kids[0], N(n.n))
	case *Sin:
		return SinOf(kids[0]), nil
	case *Cos:
		return CosOf(kids[0]), nil
	case *Ln:
		return LnOf(kids[0])
	case *Exp:
		return ExpOf(kids[0]), nil
	}
	return nil, fmt.Errorf("mx: cannot rebuild %s node", e.Kind())
}
