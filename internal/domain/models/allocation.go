package models

import "time"

// TargetAllocation holds the target portfolio weights for one rebalance date.
// Weights are fractions of portfolio value; the execution simulator consuming
// the sequence must not mutate it.
type TargetAllocation struct {
	Date    time.Time          `json:"date"`
	Weights map[string]float64 `json:"weights"`
}

// FactorDefinition configures one scoring factor inside a strategy.
type FactorDefinition struct {
	Name      string             `json:"name" yaml:"name" validate:"required"`
	Ascending bool               `json:"ascending" yaml:"ascending"`
	Params    map[string]float64 `json:"params,omitempty" yaml:"params"`
	Weight    float64            `json:"weight" yaml:"weight" default:"1.0"`
}

// FilterDefinition configures one eligibility rule applied after ranking.
// Rule strings look like "close:>=3" or "score:>=0.5".
type FilterDefinition struct {
	Name    string `json:"name" yaml:"name" validate:"required"`
	Rule    string `json:"rule" yaml:"rule" validate:"required"`
	UseRank bool   `json:"use_rank" yaml:"use_rank"`
}

// TimingDefinition configures the optional exposure overlay.
type TimingDefinition struct {
	Name       string    `json:"name" yaml:"name"`
	Params     []float64 `json:"params,omitempty" yaml:"params"`
	DataSource string    `json:"data_source" yaml:"data_source"`
}

// StrategyDefinition is the declarative selection and portfolio construction
// configuration for one run.
type StrategyDefinition struct {
	Name        string             `json:"name" yaml:"name" validate:"required"`
	HoldPeriod  string             `json:"hold_period" yaml:"hold_period" default:"1M"`
	SelectCount float64            `json:"select_count" yaml:"select_count" default:"10"`
	OffsetDays  int                `json:"offset_days" yaml:"offset_days"`
	Factors     []FactorDefinition `json:"factors" yaml:"factors" validate:"required,min=1,dive"`
	Filters     []FilterDefinition `json:"filters,omitempty" yaml:"filters" validate:"dive"`
	Universe    []string           `json:"universe,omitempty" yaml:"universe"`
}
