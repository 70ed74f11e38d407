// Package factor computes per-instrument scores and combines weighted factor
// rankings into a composite selection score.
package factor

import (
	"QuantBench/internal/domain/models"
	"QuantBench/pkg/series"
)

// Context is the immutable point-in-time snapshot handed to factor
// computations for one rebalance date. Every table is already truncated to
// rows at or before that date, so factors cannot look ahead.
type Context struct {
	Pricing   map[string]*series.Table
	Financial []models.FinancialRecord
	Macro     []models.MacroRecord
	Universe  []string
	Market    *models.MarketProfile
}

// Field resolves a pricing table by canonical name or alias.
func (c *Context) Field(name string) (*series.Table, bool) {
	if t, ok := c.Pricing[name]; ok {
		return t, true
	}
	if canon, ok := models.CanonicalField(name); ok {
		t, ok := c.Pricing[canon]
		return t, ok
	}
	return nil, false
}
