package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantBench/pkg/series"
)

func priceSeries(vals ...float64) series.TimeSeries {
	ts := series.NewTimeSeries(len(vals))
	for i, v := range vals {
		ts.AppendPoint(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i), v)
	}
	return ts
}

func TestNewUnknownOverlay(t *testing.T) {
	_, err := New("fibonacci", nil)
	assert.ErrorContains(t, err, "unknown timing overlay")
}

func TestMovingAverageRisingMarket(t *testing.T) {
	o, err := New("ma", []float64{2, 5})
	require.NoError(t, err)

	sig := o.Signal(priceSeries(100, 101, 102, 103, 104, 105, 106, 107))
	last, ok := sig.Last()
	require.True(t, ok)
	assert.Equal(t, 1.0, last)
}

func TestMovingAverageFallingMarket(t *testing.T) {
	o, err := New("ma", []float64{2, 5})
	require.NoError(t, err)

	sig := o.Signal(priceSeries(107, 106, 105, 104, 103, 102, 101, 100))
	last, ok := sig.Last()
	require.True(t, ok)
	assert.Equal(t, 0.0, last)
}

func TestBollingerBounded(t *testing.T) {
	o, err := New("bollinger", []float64{5, 2})
	require.NoError(t, err)

	sig := o.Signal(priceSeries(100, 99, 103, 98, 105, 110, 90, 104))
	require.Equal(t, 8, sig.Len())
	for _, v := range sig.Values() {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestBollingerHalfBandInterpolation(t *testing.T) {
	o, err := New("bollinger", []float64{2, 2})
	require.NoError(t, err)

	sig := o.Signal(priceSeries(1, 3, 2))
	require.Equal(t, 3, sig.Len())

	// index 1: window [1,3], mean 2, std sqrt(2); 3 > mean so the ramp runs
	// mean to upper band: (3-2)/(2*sqrt(2)+1e-6)
	_, above := sig.At(1)
	assert.InDelta(t, 0.3535533, above, 1e-6)

	// index 2: window [3,2], mean 2.5, std sqrt(0.5); 2 <= mean so the ramp
	// runs lower band to mean: (2-lower)/(mean-lower+1e-6)
	last, ok := sig.Last()
	require.True(t, ok)
	assert.InDelta(t, 0.6464461, last, 1e-6)
}

func TestTrendSlope(t *testing.T) {
	o, err := New("trend", []float64{5})
	require.NoError(t, err)

	rising := o.Signal(priceSeries(100, 101, 102, 103, 104, 105))
	last, ok := rising.Last()
	require.True(t, ok)
	assert.Equal(t, 1.0, last)

	// a single observation cannot fit a slope
	single := o.Signal(priceSeries(100))
	v, ok := single.Last()
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestOverlayAliases(t *testing.T) {
	for _, name := range []string{"ma_double", "bb", "slope", "MA"} {
		_, err := New(name, nil)
		assert.NoError(t, err, name)
	}
}
