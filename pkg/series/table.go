package series

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Table is a wide frame: rows are dates ascending, columns are instrument
// codes, cells are float64 with NaN marking missing observations.
type Table struct {
	dates []time.Time
	cols  []string
	colIx map[string]int
	cells [][]float64 // [row][col]
}

// NewTable creates an empty table over the given column set.
func NewTable(cols []string) *Table {
	ix := make(map[string]int, len(cols))
	owned := make([]string, len(cols))
	copy(owned, cols)
	for i, c := range owned {
		ix[c] = i
	}
	return &Table{cols: owned, colIx: ix}
}

// AddRow appends a row for date. Missing columns stay NaN. Rows must be added
// in ascending date order.
func (t *Table) AddRow(date time.Time, values map[string]float64) {
	row := make([]float64, len(t.cols))
	for i := range row {
		row[i] = math.NaN()
	}
	for col, v := range values {
		if i, ok := t.colIx[col]; ok {
			row[i] = v
		}
	}
	t.dates = append(t.dates, date)
	t.cells = append(t.cells, row)
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return len(t.dates) }

// Columns returns the column names. The slice is shared, not copied.
func (t *Table) Columns() []string { return t.cols }

// Dates returns the row dates. The slice is shared, not copied.
func (t *Table) Dates() []time.Time { return t.dates }

// HasColumn reports whether the instrument code is a known column.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.colIx[col]
	return ok
}

// Truncate returns the rows at or before asOf as a view sharing backing
// arrays, which is what makes per-date factor contexts cheap.
func (t *Table) Truncate(asOf time.Time) *Table {
	n := sort.Search(len(t.dates), func(i int) bool { return t.dates[i].After(asOf) })
	return &Table{dates: t.dates[:n], cols: t.cols, colIx: t.colIx, cells: t.cells[:n]}
}

// LastRow returns the most recent row as an instrument series, excluding NaN
// cells. Empty tables yield an empty series.
func (t *Table) LastRow() Series {
	if len(t.cells) == 0 {
		return Series{}
	}
	row := t.cells[len(t.cells)-1]
	out := New(len(t.cols))
	for i, c := range t.cols {
		if math.IsNaN(row[i]) {
			continue
		}
		out.Append(c, row[i])
	}
	return out
}

// Column extracts one instrument's observations as a TimeSeries, skipping
// missing cells.
func (t *Table) Column(col string) TimeSeries {
	i, ok := t.colIx[col]
	if !ok {
		return TimeSeries{}
	}
	out := NewTimeSeries(len(t.dates))
	for r, d := range t.dates {
		v := t.cells[r][i]
		if math.IsNaN(v) {
			continue
		}
		out.AppendPoint(d, v)
	}
	return out
}

// PctChange computes (last / value periods rows earlier) - 1 per column.
// Columns with a missing or zero base yield NaN entries, which callers drop.
func (t *Table) PctChange(periods int) Series {
	n := len(t.cells)
	if periods <= 0 || n <= periods {
		return Series{}
	}
	last := t.cells[n-1]
	base := t.cells[n-1-periods]
	out := New(len(t.cols))
	for i, c := range t.cols {
		if math.IsNaN(last[i]) || math.IsNaN(base[i]) || base[i] == 0 {
			out.Append(c, math.NaN())
			continue
		}
		out.Append(c, last[i]/base[i]-1)
	}
	return out
}

// Returns computes row-over-row percent changes, producing a table with one
// fewer row. A missing or zero previous cell yields NaN.
func (t *Table) Returns() *Table {
	if len(t.cells) < 2 {
		return &Table{cols: t.cols, colIx: t.colIx}
	}
	out := &Table{
		dates: t.dates[1:],
		cols:  t.cols,
		colIx: t.colIx,
		cells: make([][]float64, 0, len(t.cells)-1),
	}
	for r := 1; r < len(t.cells); r++ {
		prev, cur := t.cells[r-1], t.cells[r]
		row := make([]float64, len(t.cols))
		for i := range row {
			if math.IsNaN(prev[i]) || math.IsNaN(cur[i]) || prev[i] == 0 {
				row[i] = math.NaN()
				continue
			}
			row[i] = cur[i]/prev[i] - 1
		}
		out.cells = append(out.cells, row)
	}
	return out
}

// MeanLast computes the per-column mean over the trailing window rows.
// Columns with any missing cell inside the window yield NaN.
func (t *Table) MeanLast(window int) Series {
	n := len(t.cells)
	if window <= 0 || n < window {
		return Series{}
	}
	out := New(len(t.cols))
	buf := make([]float64, 0, window)
	for i, c := range t.cols {
		buf = buf[:0]
		complete := true
		for r := n - window; r < n; r++ {
			v := t.cells[r][i]
			if math.IsNaN(v) {
				complete = false
				break
			}
			buf = append(buf, v)
		}
		if !complete {
			out.Append(c, math.NaN())
			continue
		}
		out.Append(c, stat.Mean(buf, nil))
	}
	return out
}

// StdLast computes the per-column sample standard deviation over the trailing
// window rows, skipping missing cells. Fewer than two observations yield NaN.
func (t *Table) StdLast(window int) Series {
	n := len(t.cells)
	if window <= 0 || n == 0 {
		return Series{}
	}
	start := n - window
	if start < 0 {
		start = 0
	}
	out := New(len(t.cols))
	buf := make([]float64, 0, window)
	for i, c := range t.cols {
		buf = buf[:0]
		for r := start; r < n; r++ {
			v := t.cells[r][i]
			if !math.IsNaN(v) {
				buf = append(buf, v)
			}
		}
		if len(buf) < 2 {
			out.Append(c, math.NaN())
			continue
		}
		out.Append(c, stat.StdDev(buf, nil))
	}
	return out
}
