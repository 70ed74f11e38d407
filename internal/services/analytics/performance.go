// Package analytics derives performance statistics from the equity points
// the execution simulator reports back per run.
package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"QuantBench/internal/domain/models"
	"QuantBench/pkg/series"
)

// PerformanceSummary aggregates one run's simulated performance.
type PerformanceSummary struct {
	RunID        string  `json:"run_id"`
	Periods      int     `json:"periods"`
	TotalReturn  float64 `json:"total_return"`
	CAGR         float64 `json:"cagr"`
	Volatility   float64 `json:"volatility"`
	Sharpe       float64 `json:"sharpe"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	FinalEquity  float64 `json:"final_equity"`
	PeriodsPerYr float64 `json:"periods_per_year"`
}

// EquityCurve compounds period returns into a cumulative equity series
// starting from 1.0.
func EquityCurve(points []models.EquityPoint) series.TimeSeries {
	sorted := make([]models.EquityPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	out := series.NewTimeSeries(len(sorted))
	equity := 1.0
	for _, p := range sorted {
		equity *= 1 + p.Return
		out.AppendPoint(p.Date, equity)
	}
	return out
}

// DrawdownSeries computes equity / running-max - 1 per date.
func DrawdownSeries(equity series.TimeSeries) series.TimeSeries {
	out := series.NewTimeSeries(equity.Len())
	peak := math.Inf(-1)
	for i := 0; i < equity.Len(); i++ {
		t, v := equity.At(i)
		if v > peak {
			peak = v
		}
		out.AppendPoint(t, v/peak-1)
	}
	return out
}

// MaxDrawdown returns the deepest drawdown as a negative fraction.
func MaxDrawdown(equity series.TimeSeries) float64 {
	worst := 0.0
	dd := DrawdownSeries(equity)
	for _, v := range dd.Values() {
		if v < worst {
			worst = v
		}
	}
	return worst
}

// Summarize computes the summary statistics for a run's equity points.
// periodsPerYear annualizes CAGR and Sharpe (252 for daily returns).
func Summarize(runID string, points []models.EquityPoint, periodsPerYear float64) PerformanceSummary {
	s := PerformanceSummary{RunID: runID, Periods: len(points), PeriodsPerYr: periodsPerYear}
	if len(points) == 0 {
		return s
	}
	equity := EquityCurve(points)
	final, _ := equity.Last()
	s.FinalEquity = final
	s.TotalReturn = final - 1
	s.MaxDrawdown = MaxDrawdown(equity)

	returns := make([]float64, 0, len(points))
	for _, p := range points {
		returns = append(returns, p.Return)
	}
	mean := stat.Mean(returns, nil)
	if len(returns) > 1 {
		sd := stat.StdDev(returns, nil)
		s.Volatility = sd * math.Sqrt(periodsPerYear)
		if sd > 0 {
			s.Sharpe = mean / sd * math.Sqrt(periodsPerYear)
		}
	}
	years := float64(len(returns)) / periodsPerYear
	if years > 0 && final > 0 {
		s.CAGR = math.Pow(final, 1/years) - 1
	}
	return s
}
