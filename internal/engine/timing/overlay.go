// Package timing maps a scalar price or level series onto exposure fractions
// in [0, 1] used to scale whole-portfolio weights.
package timing

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"

	"QuantBench/pkg/series"
)

// Overlay computes one exposure value per input date. Implementations are
// stateless rolling-window functions, so the full signal series can be
// precomputed once and indexed per rebalance date.
type Overlay interface {
	Signal(ts series.TimeSeries) series.TimeSeries
}

// New builds an overlay by name. Unknown names are a configuration error.
func New(name string, params []float64) (Overlay, error) {
	switch strings.ToLower(name) {
	case "ma", "ma_double":
		fast, slow := 5, 20
		if len(params) >= 2 {
			fast, slow = int(params[0]), int(params[1])
		}
		return &MovingAverage{Fast: fast, Slow: slow}, nil
	case "bollinger", "bb":
		window, mult := 20, 2.0
		if len(params) >= 1 {
			window = int(params[0])
		}
		if len(params) >= 2 {
			mult = params[1]
		}
		return &Bollinger{Window: window, Mult: mult}, nil
	case "trend", "slope":
		window := 60
		if len(params) >= 1 {
			window = int(params[0])
		}
		return &TrendSlope{Window: window}, nil
	}
	return nil, fmt.Errorf("unknown timing overlay %q", name)
}

// MovingAverage is a binary regime filter: full exposure while the fast
// rolling mean is above the slow one, zero otherwise.
type MovingAverage struct {
	Fast, Slow int
}

func (o *MovingAverage) Signal(ts series.TimeSeries) series.TimeSeries {
	fast := ts.RollingMean(o.Fast)
	slow := ts.RollingMean(o.Slow)
	out := series.NewTimeSeries(ts.Len())
	for i := 0; i < ts.Len(); i++ {
		t, _ := ts.At(i)
		_, f := fast.At(i)
		_, s := slow.At(i)
		v := 0.0
		if f > s {
			v = 1.0
		}
		out.AppendPoint(t, v)
	}
	return out
}

// Bollinger scales exposure inside a rolling mean +/- k*std band, interpolated
// per half-band: above the mean the ramp runs mean to upper band, at or below
// it the ramp runs lower band to mean.
type Bollinger struct {
	Window int
	Mult   float64
}

func (o *Bollinger) Signal(ts series.TimeSeries) series.TimeSeries {
	ma := ts.RollingMean(o.Window)
	sd := ts.RollingStd(o.Window)
	out := series.NewTimeSeries(ts.Len())
	for i := 0; i < ts.Len(); i++ {
		t, v := ts.At(i)
		_, m := ma.At(i)
		_, s := sd.At(i)
		// the epsilon keeps flat series from dividing by zero
		var sig float64
		if v > m {
			upper := m + o.Mult*s
			sig = clamp01((v - m) / (upper - m + 1e-6))
		} else {
			lower := m - o.Mult*s
			sig = clamp01((v - lower) / (m - lower + 1e-6))
		}
		out.AppendPoint(t, sig)
	}
	return out
}

// TrendSlope fits a linear regression over the trailing window and maps
// 0.5 + slope, clamped to [0, 1], as the exposure.
type TrendSlope struct {
	Window int
}

func (o *TrendSlope) Signal(ts series.TimeSeries) series.TimeSeries {
	vals := ts.Values()
	out := series.NewTimeSeries(ts.Len())
	for i := range vals {
		t, _ := ts.At(i)
		start := i - o.Window + 1
		if start < 0 {
			start = 0
		}
		window := vals[start : i+1]
		if len(window) < 2 {
			out.AppendPoint(t, 0)
			continue
		}
		xs := make([]float64, len(window))
		for j := range xs {
			xs[j] = float64(j)
		}
		_, slope := stat.LinearRegression(xs, window, nil, false)
		out.AppendPoint(t, clamp01(0.5+slope))
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
