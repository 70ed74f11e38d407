package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantBench/pkg/series"
)

func TestCanonicalFieldAliases(t *testing.T) {
	cases := map[string]string{
		"close":    "close",
		"ClosePrice": "close",
		"收盘价":      "close",
		"成交额":      "amount",
		"流通市值":     "float_mv",
	}
	for alias, want := range cases {
		got, ok := CanonicalField(alias)
		require.True(t, ok, alias)
		assert.Equal(t, want, got)
	}
	_, ok := CanonicalField("vwap")
	assert.False(t, ok)
}

func TestNewPricingBundleRequiresClose(t *testing.T) {
	_, err := NewPricingBundle(map[string]*series.Table{})
	assert.ErrorContains(t, err, "close")

	empty := series.NewTable([]string{"aaa"})
	_, err = NewPricingBundle(map[string]*series.Table{"close": empty})
	assert.Error(t, err)
}

func TestBundleFieldAliasLookup(t *testing.T) {
	closes := series.NewTable([]string{"aaa"})
	closes.AddRow(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), map[string]float64{"aaa": 10})
	b, err := NewPricingBundle(map[string]*series.Table{"close": closes})
	require.NoError(t, err)

	for _, name := range []string{"close", "收盘价", "ClosePrice"} {
		_, ok := b.Field(name)
		assert.True(t, ok, name)
	}
	_, ok := b.Field("open")
	assert.False(t, ok)
}

func TestBundleAsOfViews(t *testing.T) {
	closes := series.NewTable([]string{"aaa"})
	d1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	closes.AddRow(d1, map[string]float64{"aaa": 10})
	closes.AddRow(d2, map[string]float64{"aaa": 11})
	b, err := NewPricingBundle(map[string]*series.Table{"close": closes})
	require.NoError(t, err)
	b.Financial = []FinancialRecord{
		{Symbol: "aaa", ReportDate: d1, Field: "eps", Value: 1},
		{Symbol: "aaa", ReportDate: d2, Field: "eps", Value: 2},
	}
	b.Macro = []MacroRecord{
		{Indicator: "cpi", ReleaseTime: d2, Value: 3},
	}

	views := b.TruncateFields(d1)
	assert.Equal(t, 1, views["close"].Rows())
	assert.Len(t, b.FinancialAsOf(d1), 1)
	assert.Empty(t, b.MacroAsOf(d1))
	assert.Len(t, b.MacroAsOf(d2), 1)
	assert.Equal(t, []time.Time{d1, d2}, b.Sessions())
}

func TestProfileFor(t *testing.T) {
	p, err := ProfileFor("CN")
	require.NoError(t, err)
	assert.Equal(t, 100, p.LotSize)
	assert.Equal(t, "XSHG", p.HolidayCalendar)

	_, err = ProfileFor("mars")
	assert.ErrorContains(t, err, "unknown market code")

	assert.Equal(t, []string{"cn", "us", "hk", "crypto"}, MarketCodes())
}
