package mx

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	DefaultTolerance = 1e-10
	DefaultSamples   = 100
	DefaultRangeMin  = -999999.0
	DefaultRangeMax  = 999999.0

	// Caps applied to sample counts and derivative orders taken from
	// untrusted input such as tool calls.
	DefaultMaxSamples = 10000
	DefaultMaxOrder   = 32
)

// Options tunes Equal. The zero value is not useful; start from
// DefaultOptions or pass Option values.
type Options struct {
	Tolerance float64
	Samples   int
	RangeMin  float64
	RangeMax  float64
	Rand      *rand.Rand

	// MaxSamples bounds Samples; MaxOrder bounds the derivative order a
	// tool call may ask for.
	MaxSamples int
	MaxOrder   int
}

type Option func(*Options)

func DefaultOptions() Options {
	return Options{
		Tolerance: DefaultTolerance,
		Samples:   DefaultSamples,
		RangeMin:  DefaultRangeMin,
		RangeMax:  DefaultRangeMax,

		MaxSamples: DefaultMaxSamples,
		MaxOrder:   DefaultMaxOrder,
	}
}

func WithTolerance(eps float64) Option { return func(o *Options) { o.Tolerance = eps } }
func WithSamples(n int) Option         { return func(o *Options) { o.Samples = n } }
func WithRand(r *rand.Rand) Option     { return func(o *Options) { o.Rand = r } }

// WithLimits sets MaxSamples and MaxOrder.
func WithLimits(maxSamples, maxOrder int) Option {
	return func(o *Options) { o.MaxSamples, o.MaxOrder = maxSamples, maxOrder }
}

func WithRange(lo, hi float64) Option {
	return func(o *Options) { o.RangeMin, o.RangeMax = lo, hi }
}

// WithSeed makes sampling reproducible.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func resolve(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *Options) sample() float64 {
	u := rand.Float64()
	if o.Rand != nil {
		u = o.Rand.Float64()
	}
	return o.RangeMin + u*(o.RangeMax-o.RangeMin)
}

func (o *Options) validate() error {
	switch {
	case o.Samples <= 0:
		return fmt.Errorf("mx: samples must be positive, got %d", o.Samples)
	case o.Samples > o.MaxSamples:
		return fmt.Errorf("mx: %d samples is above the limit of %d", o.Samples, o.MaxSamples)
	case !(o.Tolerance > 0):
		return fmt.Errorf("mx: tolerance must be positive, got %v", o.Tolerance)
	case !(o.RangeMin <= o.RangeMax):
		return fmt.Errorf("mx: empty sample range [%v, %v]", o.RangeMin, o.RangeMax)
	}
	return nil
}

// ============================================================
// Equal — stochastic numerical equivalence
// ============================================================

// Equal reports whether a and b agree numerically at randomly sampled
// points. Each free variable of either expression is drawn uniformly from
// the sample range; the relative difference (absolute when one side is
// zero) must stay below the tolerance at every sample.
//
// This is a probabilistic check, not a proof. A sample where either side is
// undetermined counts as a mismatch; an evaluation error is returned.
func Equal(a, b Expr, opts ...Option) (bool, error) {
	o := resolve(opts)
	if err := o.validate(); err != nil {
		return false, err
	}
	vars := FreeVariables(a, b)
	point := make(Bindings, len(vars))
	for i := 0; i < o.Samples; i++ {
		for _, v := range vars {
			point[v.name] = o.sample()
		}
		av, aok, err := a.Value(point)
		if err != nil {
			return false, fmt.Errorf("mx: equal: sample %d of %s: %w", i, a, err)
		}
		bv, bok, err := b.Value(point)
		if err != nil {
			return false, fmt.Errorf("mx: equal: sample %d of %s: %w", i, b, err)
		}
		if !aok || !bok || !within(av, bv, o.Tolerance) {
			return false, nil
		}
	}
	return true, nil
}

func within(a, b, eps float64) bool {
	if a == b {
		return true
	}
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	d := math.Abs(a - b)
	if a == 0 || b == 0 {
		return d < eps
	}
	return d/math.Max(math.Abs(a), math.Abs(b)) < eps
}
