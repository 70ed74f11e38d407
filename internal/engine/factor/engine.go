package factor

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"QuantBench/internal/domain/models"
	"QuantBench/pkg/series"
)

// ErrNoFactors is returned when an engine is built without any factors.
var ErrNoFactors = errors.New("no factors registered")

type boundFactor struct {
	name      string
	factor    Factor
	weight    float64
	ascending bool
}

// Engine combines multiple weighted factor rankings into one composite score
// per rebalance date.
type Engine struct {
	factors     []boundFactor
	totalWeight float64
}

// NewEngine resolves factor definitions against the registry and binds their
// weights and rank directions. Unresolvable names fail here, before any date
// is processed.
func NewEngine(registry *Registry, defs []models.FactorDefinition) (*Engine, error) {
	if len(defs) == 0 {
		return nil, ErrNoFactors
	}
	e := &Engine{factors: make([]boundFactor, 0, len(defs))}
	for _, def := range defs {
		f, err := registry.Create(def.Name, def.Params)
		if err != nil {
			return nil, fmt.Errorf("bind factor: %w", err)
		}
		e.factors = append(e.factors, boundFactor{
			name:      def.Name,
			factor:    f,
			weight:    def.Weight,
			ascending: def.Ascending,
		})
		e.totalWeight += math.Abs(def.Weight)
	}
	if e.totalWeight == 0 {
		e.totalWeight = 1.0
	}
	return e, nil
}

// Compute produces the composite score sorted descending plus the raw
// per-factor values ("details") that filters may test against. Factors
// returning empty series simply contribute nothing for the date.
//
// Alignment is an outer join: an instrument missing from one factor's result
// gets zero contribution from that factor only.
func (e *Engine) Compute(ctx *Context) (series.Series, map[string]series.Series, error) {
	if len(e.factors) == 0 {
		return series.Series{}, nil, ErrNoFactors
	}
	details := make(map[string]series.Series, len(e.factors))
	sums := make(map[string]float64)
	for _, bf := range e.factors {
		values := bf.factor.Compute(ctx).DropNaN()
		details[bf.name] = values
		ranked := values.RankDensePct(bf.ascending)
		for i := 0; i < ranked.Len(); i++ {
			k, v := ranked.At(i)
			sums[k] += v * bf.weight
		}
	}
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	composite := series.New(len(keys))
	for _, k := range keys {
		composite.Append(k, sums[k]/e.totalWeight)
	}
	return composite.SortDesc(), details, nil
}
