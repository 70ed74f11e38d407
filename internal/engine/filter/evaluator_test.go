package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantBench/internal/domain/models"
	"QuantBench/pkg/series"
)

var testDate = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

func TestNewEvaluatorRejectsMalformedRules(t *testing.T) {
	cases := []string{"close", "close:", "close:>=abc", "close>=3"}
	for _, rule := range cases {
		_, err := NewEvaluator([]models.FilterDefinition{{Name: "f", Rule: rule}})
		assert.ErrorContains(t, err, "invalid filter rule", "rule %q", rule)
	}
}

func TestApplyNoRulesPassesThrough(t *testing.T) {
	e, err := NewEvaluator(nil)
	require.NoError(t, err)

	composite := series.FromMap(map[string]float64{"aaa": 0.9, "bbb": 0.1})
	out := e.Apply(testDate, composite, nil, nil)
	assert.Equal(t, composite.ToMap(), out.ToMap())
}

func TestApplyConjunction(t *testing.T) {
	e, err := NewEvaluator([]models.FilterDefinition{
		{Name: "liq", Rule: "Turnover:>=100"},
		{Name: "score", Rule: "composite:>0.2"},
	})
	require.NoError(t, err)

	composite := series.New(3)
	composite.Append("aaa", 0.9)
	composite.Append("bbb", 0.5)
	composite.Append("ccc", 0.1)
	details := map[string]series.Series{
		"Turnover": series.FromMap(map[string]float64{"aaa": 500, "bbb": 50, "ccc": 900}),
	}

	out := e.Apply(testDate, composite, details, nil)
	// bbb fails the turnover rule, ccc fails the score rule
	assert.Equal(t, []string{"aaa"}, out.Keys())
}

func TestApplyPriceFieldRule(t *testing.T) {
	e, err := NewEvaluator([]models.FilterDefinition{{Name: "px", Rule: "close:>=100"}})
	require.NoError(t, err)

	closes := series.NewTable([]string{"aaa", "bbb"})
	closes.AddRow(testDate.AddDate(0, 0, -1), map[string]float64{"aaa": 150, "bbb": 20})
	bundle, err := models.NewPricingBundle(map[string]*series.Table{"close": closes})
	require.NoError(t, err)

	composite := series.FromMap(map[string]float64{"aaa": 0.8, "bbb": 0.6})
	out := e.Apply(testDate, composite, nil, bundle)
	assert.Equal(t, []string{"aaa"}, out.Keys())
}

func TestApplyValAndPctForms(t *testing.T) {
	// "val" defers to the definition name, "pct" additionally ranks
	e, err := NewEvaluator([]models.FilterDefinition{
		{Name: "Turnover", Rule: "pct:>0.5"},
	})
	require.NoError(t, err)

	composite := series.New(4)
	for _, k := range []string{"aaa", "bbb", "ccc", "ddd"} {
		composite.Append(k, 1)
	}
	details := map[string]series.Series{
		"Turnover": series.FromMap(map[string]float64{"aaa": 10, "bbb": 20, "ccc": 30, "ddd": 40}),
	}
	out := e.Apply(testDate, composite, details, nil)
	// rank pct keeps the upper half
	assert.ElementsMatch(t, []string{"ccc", "ddd"}, out.Keys())
}

func TestApplyUnresolvableRuleIsNoOp(t *testing.T) {
	e, err := NewEvaluator([]models.FilterDefinition{{Name: "pe", Rule: "pe_ratio:<30"}})
	require.NoError(t, err)

	composite := series.FromMap(map[string]float64{"aaa": 0.9})
	out := e.Apply(testDate, composite, nil, nil)
	assert.Equal(t, 1, out.Len())
}
