package series

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMapLexicalOrder(t *testing.T) {
	s := FromMap(map[string]float64{"c": 3, "a": 1, "b": 2})
	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())
	assert.Equal(t, []float64{1, 2, 3}, s.Values())
}

func TestDropNaN(t *testing.T) {
	s := New(3)
	s.Append("a", 1)
	s.Append("b", math.NaN())
	s.Append("c", math.Inf(1))
	out := s.DropNaN()
	assert.Equal(t, []string{"a"}, out.Keys())
}

func TestSortDescTieBreak(t *testing.T) {
	s := New(4)
	s.Append("z", 2)
	s.Append("a", 5)
	s.Append("m", 2)
	s.Append("b", 9)
	out := s.SortDesc()
	assert.Equal(t, []string{"b", "a", "m", "z"}, out.Keys())
}

func TestRankDensePctDescending(t *testing.T) {
	// three distinct values, ascending=false: highest raw value gets 1.0
	s := New(4)
	s.Append("low", 1)
	s.Append("mid", 5)
	s.Append("mid2", 5)
	s.Append("high", 9)
	ranked := s.RankDensePct(false)
	m := ranked.ToMap()
	assert.InDelta(t, 1.0, m["high"], 1e-12)
	assert.InDelta(t, 2.0/3.0, m["mid"], 1e-12)
	assert.InDelta(t, 2.0/3.0, m["mid2"], 1e-12)
	assert.InDelta(t, 1.0/3.0, m["low"], 1e-12)
}

func TestRankDensePctAscending(t *testing.T) {
	s := New(3)
	s.Append("low", 1)
	s.Append("mid", 5)
	s.Append("high", 9)
	ranked := s.RankDensePct(true)
	m := ranked.ToMap()
	assert.InDelta(t, 1.0, m["low"], 1e-12)
	assert.InDelta(t, 1.0/3.0, m["high"], 1e-12)
}

func TestRankPctAverageTies(t *testing.T) {
	s := New(4)
	s.Append("a", 10)
	s.Append("b", 20)
	s.Append("c", 20)
	s.Append("d", 40)
	ranked := s.RankPct()
	m := ranked.ToMap()
	require.InDelta(t, 0.25, m["a"], 1e-12)
	// b and c share ranks 2 and 3, average 2.5 / 4
	require.InDelta(t, 0.625, m["b"], 1e-12)
	require.InDelta(t, 0.625, m["c"], 1e-12)
	require.InDelta(t, 1.0, m["d"], 1e-12)
}

func TestSelectPreservesOrder(t *testing.T) {
	s := New(3)
	s.Append("b", 2)
	s.Append("a", 1)
	s.Append("c", 3)
	out := s.Select(map[string]bool{"a": true, "c": true})
	assert.Equal(t, []string{"a", "c"}, out.Keys())
}

func TestHeadClamps(t *testing.T) {
	s := New(2)
	s.Append("a", 1)
	s.Append("b", 2)
	assert.Equal(t, 2, s.Head(10).Len())
	assert.Equal(t, []string{"a"}, s.Head(1).Keys())
}
