package series

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableDay(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func buildTable(t *testing.T, cols []string, rows ...map[string]float64) *Table {
	t.Helper()
	tbl := NewTable(cols)
	for i, r := range rows {
		tbl.AddRow(tableDay(i+1), r)
	}
	return tbl
}

func TestTruncateIsView(t *testing.T) {
	tbl := buildTable(t, []string{"a"},
		map[string]float64{"a": 1},
		map[string]float64{"a": 2},
		map[string]float64{"a": 3},
	)
	view := tbl.Truncate(tableDay(2))
	assert.Equal(t, 2, view.Rows())
	last := view.LastRow()
	v, ok := last.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	// asOf before the first row yields an empty view
	assert.Equal(t, 0, tbl.Truncate(tableDay(1).AddDate(0, 0, -5)).Rows())
}

func TestLastRowDropsMissing(t *testing.T) {
	tbl := buildTable(t, []string{"a", "b"},
		map[string]float64{"a": 1, "b": 2},
		map[string]float64{"a": 3},
	)
	last := tbl.LastRow()
	assert.Equal(t, []string{"a"}, last.Keys())
}

func TestPctChange(t *testing.T) {
	tbl := buildTable(t, []string{"a", "b"},
		map[string]float64{"a": 100, "b": 50},
		map[string]float64{"a": 110, "b": 50},
		map[string]float64{"a": 121, "b": 60},
	)
	chg := tbl.PctChange(2)
	m := chg.DropNaN().ToMap()
	assert.InDelta(t, 0.21, m["a"], 1e-12)
	assert.InDelta(t, 0.2, m["b"], 1e-12)

	// not enough rows
	assert.True(t, tbl.PctChange(3).Empty())
}

func TestReturnsAndStdLast(t *testing.T) {
	tbl := buildTable(t, []string{"a"},
		map[string]float64{"a": 100},
		map[string]float64{"a": 110},
		map[string]float64{"a": 99},
	)
	rets := tbl.Returns()
	require.Equal(t, 2, rets.Rows())

	std := rets.StdLast(2)
	v, ok := std.Get("a")
	require.True(t, ok)
	assert.Greater(t, v, 0.0)

	// single observation cannot produce a sample std
	one := buildTable(t, []string{"a"}, map[string]float64{"a": 1}, map[string]float64{"a": 2})
	s := one.Returns().StdLast(5)
	v, _ = s.Get("a")
	assert.True(t, math.IsNaN(v))
}

func TestMeanLastStrict(t *testing.T) {
	tbl := buildTable(t, []string{"a", "b"},
		map[string]float64{"a": 1, "b": 10},
		map[string]float64{"a": 3},
	)
	m := tbl.MeanLast(2)
	va, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2.0, va)
	vb, _ := m.Get("b")
	assert.True(t, math.IsNaN(vb))
}

func TestColumnSkipsMissing(t *testing.T) {
	tbl := buildTable(t, []string{"a", "b"},
		map[string]float64{"a": 1},
		map[string]float64{"a": 2, "b": 9},
	)
	ts := tbl.Column("b")
	assert.Equal(t, 1, ts.Len())
	assert.Equal(t, 0, tbl.Column("missing").Len())
}
