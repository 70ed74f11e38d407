package models

import "time"

// DailyBar is one instrument's OHLCV row for a trading session, the long
// format delivered by the bar store before pivoting into wide tables.
type DailyBar struct {
	Symbol    string
	TradeDate time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Amount    float64
	FloatMV   float64
	AdjFactor float64
}

// FinancialRecord is a company financial metric snapshot, point-in-time keyed
// by report date.
type FinancialRecord struct {
	Symbol       string
	ReportDate   time.Time
	FiscalPeriod string
	Field        string
	Value        float64
	Currency     string
}

// MacroRecord is a macro-economic indicator observation keyed by release time.
type MacroRecord struct {
	Indicator   string
	ReleaseTime time.Time
	Value       float64
	Region      string
}

// EquityPoint is one period return reported back by the execution simulator.
type EquityPoint struct {
	RunID  string    `json:"run_id"`
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
}
