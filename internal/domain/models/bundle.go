package models

import (
	"fmt"
	"strings"
	"time"

	"QuantBench/pkg/series"
)

// Canonical pricing field names and their accepted aliases, including the
// Chinese column names that upstream A-share datasets carry.
var fieldAliases = map[string]string{
	"close":      "close",
	"closeprice": "close",
	"收盘价":        "close",
	"open":       "open",
	"开盘价":        "open",
	"high":       "high",
	"最高价":        "high",
	"low":        "low",
	"最低价":        "low",
	"volume":     "volume",
	"成交量":        "volume",
	"amount":     "amount",
	"成交额":        "amount",
	"float_mv":   "float_mv",
	"流通市值":       "float_mv",
}

// CanonicalField resolves a field alias to its canonical name.
func CanonicalField(name string) (string, bool) {
	f, ok := fieldAliases[strings.ToLower(name)]
	return f, ok
}

// PricingBundle holds the wide per-field tables a run computes against, plus
// optional financial and macro rows. It is read-only for the duration of a
// run and safe to share across concurrent runs.
type PricingBundle struct {
	fields    map[string]*series.Table
	Financial []FinancialRecord
	Macro     []MacroRecord
}

// NewPricingBundle validates the field tables and wraps them. A "close" table
// is mandatory; a bundle without it cannot enter the allocation loop.
func NewPricingBundle(fields map[string]*series.Table) (*PricingBundle, error) {
	if fields["close"] == nil || fields["close"].Rows() == 0 {
		return nil, fmt.Errorf("pricing bundle requires close prices")
	}
	return &PricingBundle{fields: fields}, nil
}

// Field returns the table for a canonical field name or alias.
func (b *PricingBundle) Field(name string) (*series.Table, bool) {
	if t, ok := b.fields[name]; ok {
		return t, true
	}
	if canon, ok := CanonicalField(name); ok {
		t, ok := b.fields[canon]
		return t, ok
	}
	return nil, false
}

// Close returns the mandatory close-price table.
func (b *PricingBundle) Close() *series.Table {
	return b.fields["close"]
}

// FieldNames lists the available field tables.
func (b *PricingBundle) FieldNames() []string {
	names := make([]string, 0, len(b.fields))
	for n := range b.fields {
		names = append(names, n)
	}
	return names
}

// Sessions returns the close table's date index, the session domain a run
// falls back to when no holiday calendar is resolvable.
func (b *PricingBundle) Sessions() []time.Time {
	return b.Close().Dates()
}

// TruncateFields returns every field table truncated to rows at or before
// asOf. Views share backing arrays with the bundle.
func (b *PricingBundle) TruncateFields(asOf time.Time) map[string]*series.Table {
	out := make(map[string]*series.Table, len(b.fields))
	for name, t := range b.fields {
		out[name] = t.Truncate(asOf)
	}
	return out
}

// FinancialAsOf returns financial rows whose report date is at or before asOf.
func (b *PricingBundle) FinancialAsOf(asOf time.Time) []FinancialRecord {
	if len(b.Financial) == 0 {
		return nil
	}
	out := make([]FinancialRecord, 0, len(b.Financial))
	for _, r := range b.Financial {
		if !r.ReportDate.After(asOf) {
			out = append(out, r)
		}
	}
	return out
}

// MacroAsOf returns macro rows released at or before asOf.
func (b *PricingBundle) MacroAsOf(asOf time.Time) []MacroRecord {
	if len(b.Macro) == 0 {
		return nil
	}
	out := make([]MacroRecord, 0, len(b.Macro))
	for _, r := range b.Macro {
		if !r.ReleaseTime.After(asOf) {
			out = append(out, r)
		}
	}
	return out
}
