package models

import "time"

// BacktestRequest is the payload accepted by the API and the job queue: one
// allocation-generation run over a market and date range.
type BacktestRequest struct {
	Market   string             `json:"market" yaml:"market" validate:"required"`
	Start    string             `json:"start" yaml:"start" validate:"required"`
	End      string             `json:"end" yaml:"end" validate:"required"`
	Strategy StrategyDefinition `json:"strategy" yaml:"strategy" validate:"required"`
	Timing   *TimingDefinition  `json:"timing,omitempty" yaml:"timing"`
	// Workers > 1 computes rebalance dates concurrently; results are
	// re-sorted into ascending date order either way.
	Workers int  `json:"workers,omitempty" yaml:"workers" validate:"gte=0,lte=32"`
	Publish bool `json:"publish,omitempty" yaml:"publish"`
}

// BacktestResult is the output artifact of one run.
type BacktestResult struct {
	RunID       string             `json:"run_id"`
	Market      string             `json:"market"`
	Strategy    string             `json:"strategy"`
	Allocations []TargetAllocation `json:"allocations"`
	Sessions    int                `json:"sessions"`
	StartedAt   time.Time          `json:"started_at"`
	Duration    time.Duration      `json:"duration_ms"`
}
