package factor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantBench/internal/domain/models"
	"QuantBench/pkg/series"
)

func pricingContext(rows ...map[string]float64) *Context {
	cols := map[string]bool{}
	for _, r := range rows {
		for c := range r {
			cols[c] = true
		}
	}
	names := make([]string, 0, len(cols))
	for c := range cols {
		names = append(names, c)
	}
	table := series.NewTable(names)
	for i, r := range rows {
		table.AddRow(time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC), r)
	}
	return &Context{Pricing: map[string]*series.Table{"close": table}}
}

func TestNewEngineRejectsEmptyAndUnknown(t *testing.T) {
	registry := NewRegistry()

	_, err := NewEngine(registry, nil)
	assert.ErrorIs(t, err, ErrNoFactors)

	_, err = NewEngine(registry, []models.FactorDefinition{{Name: "NoSuchFactor", Weight: 1}})
	assert.ErrorContains(t, err, "not registered")
}

func TestComputeMomentumRanking(t *testing.T) {
	registry := NewRegistry()
	engine, err := NewEngine(registry, []models.FactorDefinition{{
		Name:   "Momentum",
		Params: map[string]float64{"window": 1},
		Weight: 1,
	}})
	require.NoError(t, err)

	ctx := pricingContext(
		map[string]float64{"aaa": 100, "bbb": 100, "ccc": 100},
		map[string]float64{"aaa": 110, "bbb": 105, "ccc": 90},
	)
	composite, details, err := engine.Compute(ctx)
	require.NoError(t, err)

	// highest trailing return ranks first with 1.0
	require.Equal(t, 3, composite.Len())
	k, v := composite.At(0)
	assert.Equal(t, "aaa", k)
	assert.InDelta(t, 1.0, v, 1e-12)
	k, _ = composite.At(2)
	assert.Equal(t, "ccc", k)

	raw, ok := details["Momentum"].Get("aaa")
	require.True(t, ok)
	assert.InDelta(t, 0.10, raw, 1e-12)
}

func TestComputeInsufficientHistory(t *testing.T) {
	registry := NewRegistry()
	engine, err := NewEngine(registry, []models.FactorDefinition{{
		Name:   "Momentum",
		Params: map[string]float64{"window": 5},
		Weight: 1,
	}})
	require.NoError(t, err)

	ctx := pricingContext(map[string]float64{"aaa": 100})
	composite, _, err := engine.Compute(ctx)
	require.NoError(t, err)
	assert.True(t, composite.Empty())
}

func TestComputeWeightedOuterJoin(t *testing.T) {
	registry := NewRegistry()
	registry.Register("Fixed", func(p map[string]float64) Factor {
		return fixedFactor{vals: map[string]float64{"aaa": 1, "bbb": 2}}
	})
	registry.Register("Partial", func(p map[string]float64) Factor {
		return fixedFactor{vals: map[string]float64{"bbb": 5}}
	})
	engine, err := NewEngine(registry, []models.FactorDefinition{
		{Name: "Fixed", Weight: 1},
		{Name: "Partial", Weight: 3},
	})
	require.NoError(t, err)

	composite, _, err := engine.Compute(&Context{})
	require.NoError(t, err)

	m := composite.ToMap()
	// Fixed ranks: bbb=1.0, aaa=0.5. Partial: bbb=1.0, aaa absent.
	assert.InDelta(t, (1.0*1+1.0*3)/4, m["bbb"], 1e-12)
	assert.InDelta(t, (0.5*1)/4, m["aaa"], 1e-12)
}

func TestComputeZeroWeightsStayFinite(t *testing.T) {
	registry := NewRegistry()
	registry.Register("FlatA", func(p map[string]float64) Factor {
		return fixedFactor{vals: map[string]float64{"aaa": 1, "bbb": 2}}
	})
	registry.Register("FlatB", func(p map[string]float64) Factor {
		return fixedFactor{vals: map[string]float64{"aaa": 3, "bbb": 4}}
	})
	engine, err := NewEngine(registry, []models.FactorDefinition{
		{Name: "FlatA", Weight: 0},
		{Name: "FlatB", Weight: 0},
	})
	require.NoError(t, err)

	// the weight sum denominator falls back to 1.0, so zero-weight factors
	// produce zero scores instead of NaN
	composite, _, err := engine.Compute(&Context{})
	require.NoError(t, err)
	require.Equal(t, 2, composite.Len())
	for _, v := range composite.Values() {
		require.False(t, math.IsNaN(v))
		require.False(t, math.IsInf(v, 0))
		assert.Equal(t, 0.0, v)
	}
}

func TestRegistryAvailableSorted(t *testing.T) {
	names := NewRegistry().Available()
	assert.Contains(t, names, "Momentum")
	assert.Contains(t, names, "LowVolatility")
	assert.IsIncreasing(t, names)
}

type fixedFactor struct {
	vals map[string]float64
}

func (f fixedFactor) Compute(*Context) series.Series {
	return series.FromMap(f.vals)
}
