package usecase

import (
	"fmt"
	"sort"
	"time"

	"QuantBench/internal/domain/models"
	"QuantBench/pkg/series"
)

// BuildBundle pivots long-format daily bars into the wide per-field tables a
// run computes against. Missing "close" data is fatal here, before the
// allocation loop starts.
func BuildBundle(bars []models.DailyBar, financial []models.FinancialRecord, macro []models.MacroRecord) (*models.PricingBundle, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("build bundle: no daily bars")
	}

	symbolSet := make(map[string]bool)
	dateSet := make(map[time.Time]bool)
	for _, bar := range bars {
		symbolSet[bar.Symbol] = true
		dateSet[normalizeDay(bar.TradeDate)] = true
	}
	symbols := make([]string, 0, len(symbolSet))
	for s := range symbolSet {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	type rowMap = map[string]float64
	fieldRows := map[string]map[time.Time]rowMap{
		"open":     {},
		"high":     {},
		"low":      {},
		"close":    {},
		"volume":   {},
		"amount":   {},
		"float_mv": {},
	}
	put := func(field string, d time.Time, symbol string, v float64) {
		rows := fieldRows[field]
		if rows[d] == nil {
			rows[d] = rowMap{}
		}
		rows[d][symbol] = v
	}
	for _, bar := range bars {
		d := normalizeDay(bar.TradeDate)
		put("open", d, bar.Symbol, bar.Open)
		put("high", d, bar.Symbol, bar.High)
		put("low", d, bar.Symbol, bar.Low)
		put("close", d, bar.Symbol, bar.Close)
		put("volume", d, bar.Symbol, bar.Volume)
		put("amount", d, bar.Symbol, bar.Amount)
		if bar.FloatMV > 0 {
			put("float_mv", d, bar.Symbol, bar.FloatMV)
		}
	}

	fields := make(map[string]*series.Table, len(fieldRows))
	for field, rows := range fieldRows {
		if len(rows) == 0 {
			continue
		}
		table := series.NewTable(symbols)
		for _, d := range dates {
			if row, ok := rows[d]; ok {
				table.AddRow(d, row)
			}
		}
		if table.Rows() > 0 {
			fields[field] = table
		}
	}

	bundle, err := models.NewPricingBundle(fields)
	if err != nil {
		return nil, fmt.Errorf("build bundle: %w", err)
	}
	bundle.Financial = financial
	bundle.Macro = macro
	return bundle, nil
}

func normalizeDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
