package mx

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Result is one evaluation outcome; OK is false when the value is
// undetermined.
type Result struct {
	Value float64
	OK    bool
}

// EvaluateBatch evaluates e under every binding in points concurrently.
// Results are in the order of points. The first evaluation error cancels
// the remaining work and is returned.
func EvaluateBatch(ctx context.Context, e Expr, points []Bindings) ([]Result, error) {
	out := make([]Result, len(points))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range points {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, ok, err := e.Value(p)
			if err != nil {
				return fmt.Errorf("point %d: %w", i, err)
			}
			out[i] = Result{Value: v, OK: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
