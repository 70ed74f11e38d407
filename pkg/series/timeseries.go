package series

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// TimeSeries is a date-indexed float vector with ascending timestamps.
type TimeSeries struct {
	times []time.Time
	vals  []float64
}

// NewTimeSeries returns an empty TimeSeries with the given capacity hint.
func NewTimeSeries(capacity int) TimeSeries {
	return TimeSeries{
		times: make([]time.Time, 0, capacity),
		vals:  make([]float64, 0, capacity),
	}
}

// AppendPoint adds an observation. Timestamps must be appended in ascending
// order; out-of-order points are the caller's bug, not silently reordered.
func (ts *TimeSeries) AppendPoint(t time.Time, v float64) {
	ts.times = append(ts.times, t)
	ts.vals = append(ts.vals, v)
}

// Len returns the number of observations.
func (ts TimeSeries) Len() int { return len(ts.times) }

// Empty reports whether the series has no observations.
func (ts TimeSeries) Empty() bool { return len(ts.times) == 0 }

// Times returns the timestamps in order. The slice is shared, not copied.
func (ts TimeSeries) Times() []time.Time { return ts.times }

// Values returns the values in order. The slice is shared, not copied.
func (ts TimeSeries) Values() []float64 { return ts.vals }

// At returns the observation at position i.
func (ts TimeSeries) At(i int) (time.Time, float64) { return ts.times[i], ts.vals[i] }

// Last returns the most recent value, or false when empty.
func (ts TimeSeries) Last() (float64, bool) {
	if len(ts.vals) == 0 {
		return 0, false
	}
	return ts.vals[len(ts.vals)-1], true
}

// Truncate returns the observations at or before asOf. The result shares
// backing arrays with the receiver.
func (ts TimeSeries) Truncate(asOf time.Time) TimeSeries {
	n := sort.Search(len(ts.times), func(i int) bool { return ts.times[i].After(asOf) })
	return TimeSeries{times: ts.times[:n], vals: ts.vals[:n]}
}

// LastAt returns the most recent value at or before asOf, or false when no
// observation exists that early.
func (ts TimeSeries) LastAt(asOf time.Time) (float64, bool) {
	return ts.Truncate(asOf).Last()
}

// RollingMean computes a trailing mean with the given window. Partial windows
// at the start use however many observations exist (min periods of one).
func (ts TimeSeries) RollingMean(window int) TimeSeries {
	out := NewTimeSeries(len(ts.vals))
	for i := range ts.vals {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		out.AppendPoint(ts.times[i], stat.Mean(ts.vals[start:i+1], nil))
	}
	return out
}

// RollingStd computes a trailing sample standard deviation with the given
// window. Windows with fewer than two observations yield zero.
func (ts TimeSeries) RollingStd(window int) TimeSeries {
	out := NewTimeSeries(len(ts.vals))
	for i := range ts.vals {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		if i-start+1 < 2 {
			out.AppendPoint(ts.times[i], 0)
			continue
		}
		sd := stat.StdDev(ts.vals[start:i+1], nil)
		if math.IsNaN(sd) {
			sd = 0
		}
		out.AppendPoint(ts.times[i], sd)
	}
	return out
}
