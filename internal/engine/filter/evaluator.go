// Package filter narrows a composite ranking to the instruments that pass
// configured eligibility rules.
package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"QuantBench/internal/domain/models"
	"QuantBench/pkg/series"
)

// operator match order matters: two-character operators must be tried before
// their one-character prefixes.
var operators = []string{"<=", ">=", "==", "!=", "<", ">"}

type parsedRule struct {
	// field selects the series to test: "composite"/"score", a factor name,
	// or a price-field alias. The legacy "val"/"pct" forms defer to the
	// definition name, with "pct" forcing rank mode.
	field     string
	op        string
	threshold float64
	useRank   bool
}

// Evaluator applies conjunctive filter rules to a composite score. All rules
// are parsed at construction so malformed configuration fails before any
// rebalance date is processed.
type Evaluator struct {
	rules []parsedRule
}

// NewEvaluator parses the filter definitions.
func NewEvaluator(defs []models.FilterDefinition) (*Evaluator, error) {
	e := &Evaluator{rules: make([]parsedRule, 0, len(defs))}
	for _, def := range defs {
		rule, err := parse(def)
		if err != nil {
			return nil, err
		}
		e.rules = append(e.rules, rule)
	}
	return e, nil
}

func parse(def models.FilterDefinition) (parsedRule, error) {
	field, expr, ok := strings.Cut(def.Rule, ":")
	if !ok {
		return parsedRule{}, fmt.Errorf("invalid filter rule: %s", def.Rule)
	}
	for _, op := range operators {
		if _, rest, found := strings.Cut(expr, op); found {
			threshold, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
			if err != nil {
				return parsedRule{}, fmt.Errorf("invalid filter rule: %s", def.Rule)
			}
			rule := parsedRule{field: field, op: op, threshold: threshold, useRank: def.UseRank}
			if field == "val" || field == "pct" {
				rule.field = def.Name
				if field == "pct" {
					rule.useRank = true
				}
			}
			return rule, nil
		}
	}
	return parsedRule{}, fmt.Errorf("invalid filter rule: %s", def.Rule)
}

// Apply intersects the composite with every rule's passing set, preserving
// composite order. A rule whose target series cannot be resolved for the date
// is a no-op, so optional data sources never hard-fail a run.
func (e *Evaluator) Apply(date time.Time, composite series.Series, details map[string]series.Series, pricing *models.PricingBundle) series.Series {
	eligible := composite
	for _, rule := range e.rules {
		s, ok := resolve(rule.field, date, composite, details, pricing)
		if !ok || s.Empty() {
			continue
		}
		if rule.useRank {
			s = s.RankPct()
		}
		keep := make(map[string]bool, s.Len())
		for i := 0; i < s.Len(); i++ {
			k, v := s.At(i)
			if compare(v, rule.op, rule.threshold) {
				keep[k] = true
			}
		}
		eligible = eligible.Select(keep)
	}
	return eligible
}

func resolve(field string, date time.Time, composite series.Series, details map[string]series.Series, pricing *models.PricingBundle) (series.Series, bool) {
	if field == "composite" || field == "score" {
		return composite, true
	}
	if s, ok := details[field]; ok {
		return s, true
	}
	if pricing != nil {
		if table, ok := pricing.Field(field); ok {
			asOf := table.Truncate(date)
			if asOf.Rows() == 0 {
				return series.Series{}, false
			}
			return asOf.LastRow(), true
		}
	}
	return series.Series{}, false
}

func compare(v float64, op string, threshold float64) bool {
	switch op {
	case "<=":
		return v <= threshold
	case ">=":
		return v >= threshold
	case "==":
		return v == threshold
	case "!=":
		return v != threshold
	case "<":
		return v < threshold
	default:
		return v > threshold
	}
}
