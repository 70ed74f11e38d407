package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantBench/internal/domain/models"
	"QuantBench/internal/engine/factor"
)

// six consecutive sessions: 2024-01-02..05, 08, 09
var testSessions = []time.Time{
	time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
	time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
	time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
}

func testBundle(t *testing.T) *models.PricingBundle {
	t.Helper()
	var bars []models.DailyBar
	for i, d := range testSessions {
		step := float64(i)
		for symbol, px := range map[string]float64{
			"aaa": 100 * math.Pow(1.02, step), // strong riser
			"bbb": 100 * math.Pow(1.01, step), // mild riser
			"ccc": 100 * math.Pow(0.99, step), // faller
		} {
			bars = append(bars, models.DailyBar{
				Symbol: symbol, TradeDate: d,
				Open: px, High: px, Low: px, Close: px,
				Volume: 1000, Amount: px * 1000,
			})
		}
	}
	b, err := BuildBundle(bars, nil, nil)
	require.NoError(t, err)
	return b
}

func dailyMomentumRequest() *models.BacktestRequest {
	return &models.BacktestRequest{
		Market: "cn",
		Start:  "2024-01-02",
		End:    "2024-01-09",
		Strategy: models.StrategyDefinition{
			Name:        "mom-daily",
			HoldPeriod:  "1D",
			SelectCount: 2,
			Factors: []models.FactorDefinition{
				{Name: "Momentum", Params: map[string]float64{"window": 1}, Weight: 1},
			},
		},
	}
}

func TestBuilderEndToEnd(t *testing.T) {
	builder, err := NewAllocationBuilder(factor.NewRegistry(), testBundle(t), dailyMomentumRequest(), nil)
	require.NoError(t, err)

	require.Len(t, builder.Schedule(), 5)
	allocations, err := builder.Build(context.Background())
	require.NoError(t, err)

	// the first scheduled date has a single row of history, so momentum
	// yields nothing and the date is skipped
	require.Len(t, allocations, 4)
	for i, a := range allocations {
		if i > 0 {
			assert.True(t, a.Date.After(allocations[i-1].Date))
		}
		require.Len(t, a.Weights, 2)
		assert.Contains(t, a.Weights, "aaa")
		assert.Contains(t, a.Weights, "bbb")

		sum := 0.0
		for _, w := range a.Weights {
			sum += math.Abs(w)
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
		assert.Greater(t, a.Weights["aaa"], a.Weights["bbb"])
	}
}

func TestBuilderParallelMatchesSequential(t *testing.T) {
	registry := factor.NewRegistry()
	bundle := testBundle(t)

	seqReq := dailyMomentumRequest()
	seq, err := NewAllocationBuilder(registry, bundle, seqReq, nil)
	require.NoError(t, err)
	seqOut, err := seq.Build(context.Background())
	require.NoError(t, err)

	parReq := dailyMomentumRequest()
	parReq.Workers = 4
	par, err := NewAllocationBuilder(registry, bundle, parReq, nil)
	require.NoError(t, err)
	parOut, err := par.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, seqOut, parOut)
}

func TestBuilderUniverseRestriction(t *testing.T) {
	req := dailyMomentumRequest()
	req.Strategy.Universe = []string{"bbb", "ccc"}
	builder, err := NewAllocationBuilder(factor.NewRegistry(), testBundle(t), req, nil)
	require.NoError(t, err)

	allocations, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, allocations)
	for _, a := range allocations {
		assert.NotContains(t, a.Weights, "aaa")
	}
}

func TestBuilderFilterExcludes(t *testing.T) {
	req := dailyMomentumRequest()
	// ccc decays below 100 immediately; aaa and bbb stay above
	req.Strategy.Filters = []models.FilterDefinition{{Name: "px", Rule: "close:>=100"}}
	req.Strategy.SelectCount = 3
	builder, err := NewAllocationBuilder(factor.NewRegistry(), testBundle(t), req, nil)
	require.NoError(t, err)

	allocations, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, allocations)
	for _, a := range allocations {
		assert.NotContains(t, a.Weights, "ccc")
	}
}

func TestBuilderTimingOverlayScalesExposure(t *testing.T) {
	req := dailyMomentumRequest()
	// ccc falls steadily, so a fast/slow crossover reads zero exposure
	req.Timing = &models.TimingDefinition{
		Name:       "ma",
		Params:     []float64{2, 4},
		DataSource: "pricing:close:ccc",
	}
	builder, err := NewAllocationBuilder(factor.NewRegistry(), testBundle(t), req, nil)
	require.NoError(t, err)

	allocations, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, allocations)
	last := allocations[len(allocations)-1]
	for _, w := range last.Weights {
		assert.Equal(t, 0.0, w)
	}
}

func TestBuilderConfigurationFailsFast(t *testing.T) {
	registry := factor.NewRegistry()
	bundle := testBundle(t)

	bad := dailyMomentumRequest()
	bad.Market = "atlantis"
	_, err := NewAllocationBuilder(registry, bundle, bad, nil)
	assert.ErrorContains(t, err, "resolve market")

	bad = dailyMomentumRequest()
	bad.Strategy.Factors = []models.FactorDefinition{{Name: "Astrology", Weight: 1}}
	_, err = NewAllocationBuilder(registry, bundle, bad, nil)
	assert.ErrorContains(t, err, "build factor engine")

	bad = dailyMomentumRequest()
	bad.Strategy.Filters = []models.FilterDefinition{{Name: "f", Rule: "close>=3"}}
	_, err = NewAllocationBuilder(registry, bundle, bad, nil)
	assert.ErrorContains(t, err, "build filters")

	bad = dailyMomentumRequest()
	bad.Strategy.HoldPeriod = "1Z"
	_, err = NewAllocationBuilder(registry, bundle, bad, nil)
	assert.ErrorContains(t, err, "build schedule")

	bad = dailyMomentumRequest()
	bad.Timing = &models.TimingDefinition{Name: "astral", DataSource: "pricing:close:aaa"}
	_, err = NewAllocationBuilder(registry, bundle, bad, nil)
	assert.ErrorContains(t, err, "build timing overlay")
}

func TestBuilderCancellation(t *testing.T) {
	builder, err := NewAllocationBuilder(factor.NewRegistry(), testBundle(t), dailyMomentumRequest(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = builder.Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
