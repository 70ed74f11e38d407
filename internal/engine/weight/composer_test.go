package weight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantBench/pkg/series"
)

func ranked(pairs ...interface{}) series.Series {
	s := series.New(len(pairs) / 2)
	for i := 0; i < len(pairs); i += 2 {
		s.Append(pairs[i].(string), pairs[i+1].(float64))
	}
	return s
}

func absSum(weights map[string]float64) float64 {
	sum := 0.0
	for _, w := range weights {
		sum += math.Abs(w)
	}
	return sum
}

func TestComposeTopCountNormalizes(t *testing.T) {
	w := Compose(ranked("aaa", 1.0, "bbb", 0.5, "ccc", 0.25), 2)
	require.Len(t, w, 2)
	assert.InDelta(t, 1.0, absSum(w), 1e-12)
	assert.InDelta(t, 2.0/3.0, w["aaa"], 1e-12)
	assert.InDelta(t, 1.0/3.0, w["bbb"], 1e-12)
}

func TestComposeFractionalSelect(t *testing.T) {
	s := ranked("a", 4.0, "b", 3.0, "c", 2.0, "d", 1.0)
	w := Compose(s, 0.5)
	require.Len(t, w, 2)
	assert.Contains(t, w, "a")
	assert.Contains(t, w, "b")
}

func TestComposeFloorOfOne(t *testing.T) {
	s := ranked("a", 4.0, "b", 3.0)
	// fraction rounding down to zero still selects one instrument
	w := Compose(s, 0.1)
	require.Len(t, w, 1)
	assert.InDelta(t, 1.0, w["a"], 1e-12)
}

func TestComposeAllNegativeFallback(t *testing.T) {
	w := Compose(ranked("a", -1.0, "b", -3.0), 2)
	require.Len(t, w, 2)
	// signs are preserved, normalized by the absolute sum
	assert.InDelta(t, -0.25, w["a"], 1e-12)
	assert.InDelta(t, -0.75, w["b"], 1e-12)
	assert.InDelta(t, 1.0, absSum(w), 1e-12)
}

func TestComposeZeroSumEqualSplit(t *testing.T) {
	w := Compose(ranked("a", 0.0, "b", 0.0), 2)
	require.Len(t, w, 2)
	assert.InDelta(t, 0.5, w["a"], 1e-12)
	assert.InDelta(t, 0.5, w["b"], 1e-12)
}

func TestComposeEmpty(t *testing.T) {
	assert.Empty(t, Compose(series.Series{}, 5))
}

func TestComposeIdempotent(t *testing.T) {
	s := ranked("a", 2.0, "b", 1.0)
	assert.Equal(t, Compose(s, 2), Compose(s, 2))
}
