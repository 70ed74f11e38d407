package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantBench/internal/domain/models"
)

func bar(symbol string, day int, close float64) models.DailyBar {
	return models.DailyBar{
		Symbol:    symbol,
		TradeDate: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Open:      close - 1,
		High:      close + 1,
		Low:       close - 2,
		Close:     close,
		Volume:    1000,
		Amount:    close * 1000,
	}
}

func TestBuildBundlePivots(t *testing.T) {
	bars := []models.DailyBar{
		bar("aaa", 2, 10),
		bar("bbb", 2, 20),
		bar("aaa", 3, 11),
		bar("bbb", 3, 21),
	}
	b, err := BuildBundle(bars, nil, nil)
	require.NoError(t, err)

	closes := b.Close()
	assert.Equal(t, 2, closes.Rows())
	assert.Equal(t, []string{"aaa", "bbb"}, closes.Columns())

	last := closes.LastRow()
	v, ok := last.Get("bbb")
	require.True(t, ok)
	assert.Equal(t, 21.0, v)

	// float_mv absent from the input never materializes a table
	_, ok = b.Field("float_mv")
	assert.False(t, ok)
}

func TestBuildBundleFloatMV(t *testing.T) {
	withMV := bar("aaa", 2, 10)
	withMV.FloatMV = 5e9
	b, err := BuildBundle([]models.DailyBar{withMV, bar("bbb", 2, 20)}, nil, nil)
	require.NoError(t, err)

	mv, ok := b.Field("float_mv")
	require.True(t, ok)
	v, ok := mv.LastRow().Get("aaa")
	require.True(t, ok)
	assert.Equal(t, 5e9, v)
	// bbb had no float_mv, so its cell stays missing
	assert.False(t, mv.LastRow().Has("bbb"))
}

func TestBuildBundleEmpty(t *testing.T) {
	_, err := BuildBundle(nil, nil, nil)
	assert.ErrorContains(t, err, "no daily bars")
}

func TestBuildBundleCarriesAuxiliaryRows(t *testing.T) {
	fin := []models.FinancialRecord{{Symbol: "aaa", Field: "eps", Value: 1}}
	mac := []models.MacroRecord{{Indicator: "cpi", Value: 2}}
	b, err := BuildBundle([]models.DailyBar{bar("aaa", 2, 10)}, fin, mac)
	require.NoError(t, err)
	assert.Len(t, b.Financial, 1)
	assert.Len(t, b.Macro, 1)
}
