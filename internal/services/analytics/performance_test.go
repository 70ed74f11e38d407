package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantBench/internal/domain/models"
)

func point(day int, r float64) models.EquityPoint {
	return models.EquityPoint{
		RunID:  "r1",
		Date:   time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Return: r,
	}
}

func TestEquityCurveCompounds(t *testing.T) {
	// out of order on purpose; the curve sorts by date first
	curve := EquityCurve([]models.EquityPoint{point(3, -0.05), point(2, 0.10)})
	require.Equal(t, 2, curve.Len())
	final, ok := curve.Last()
	require.True(t, ok)
	assert.InDelta(t, 1.10*0.95, final, 1e-12)
}

func TestMaxDrawdown(t *testing.T) {
	curve := EquityCurve([]models.EquityPoint{
		point(2, 0.10),
		point(3, -0.20),
		point(4, 0.05),
	})
	// peak 1.10, trough 0.88
	assert.InDelta(t, -0.20, MaxDrawdown(curve), 1e-12)
}

func TestSummarize(t *testing.T) {
	points := []models.EquityPoint{
		point(2, 0.01),
		point(3, -0.02),
		point(4, 0.015),
		point(5, 0.005),
	}
	s := Summarize("r1", points, 252)
	assert.Equal(t, "r1", s.RunID)
	assert.Equal(t, 4, s.Periods)
	assert.InDelta(t, s.FinalEquity-1, s.TotalReturn, 1e-12)
	assert.Greater(t, s.Volatility, 0.0)
	assert.Less(t, s.MaxDrawdown, 0.0)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize("r1", nil, 252)
	assert.Equal(t, 0, s.Periods)
	assert.Zero(t, s.TotalReturn)
}
