package factor

import (
	"fmt"
	"sort"

	"QuantBench/pkg/series"
)

// Factor computes per-instrument raw scores from a point-in-time context.
// An empty result means insufficient history and skips the factor's
// contribution for that date; it is not an error.
type Factor interface {
	Compute(ctx *Context) series.Series
}

// Constructor builds a factor instance from its configured parameters.
type Constructor func(params map[string]float64) Factor

// Registry maps factor names to constructors. One registry is built per run
// and passed to whoever needs it; there is no process-wide registry state.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns a registry pre-populated with the built-in factors.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}
	r.Register("Momentum", func(p map[string]float64) Factor { return &Momentum{params: p} })
	r.Register("Volatility", func(p map[string]float64) Factor { return &Volatility{params: p} })
	r.Register("LowVolatility", func(p map[string]float64) Factor { return &LowVolatility{params: p} })
	r.Register("AverageTurnover", func(p map[string]float64) Factor { return &AverageTurnover{params: p} })
	r.Register("FloatMarketCap", func(p map[string]float64) Factor { return &FloatMarketCap{} })
	return r
}

// Register adds or replaces a named constructor.
func (r *Registry) Register(name string, ctor Constructor) {
	r.constructors[name] = ctor
}

// Available lists registered factor names in lexical order.
func (r *Registry) Available() []string {
	names := make([]string, 0, len(r.constructors))
	for n := range r.constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Create instantiates a factor by name.
func (r *Registry) Create(name string, params map[string]float64) (Factor, error) {
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, fmt.Errorf("factor %q is not registered", name)
	}
	return ctor(params), nil
}
