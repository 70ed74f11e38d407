package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseHoldPeriod(t *testing.T) {
	step, err := ParseHoldPeriod("1M")
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 31), step.Next(day(2024, 1, 15)))

	_, err = ParseHoldPeriod("3X")
	assert.Error(t, err)
	_, err = ParseHoldPeriod("M")
	assert.Error(t, err)
	_, err = ParseHoldPeriod("0M")
	assert.Error(t, err)
}

func TestHoldStepMonthEndAnchor(t *testing.T) {
	step, err := ParseHoldPeriod("1M")
	require.NoError(t, err)

	// mid-month rolls to this month's end
	assert.Equal(t, day(2024, 1, 31), step.Next(day(2024, 1, 10)))
	// already at month end rolls to the next one, even across short months
	assert.Equal(t, day(2024, 2, 29), step.Next(day(2024, 1, 31)))
	assert.Equal(t, day(2024, 3, 31), step.Next(day(2024, 2, 29)))
}

func TestHoldStepWeekly(t *testing.T) {
	step, err := ParseHoldPeriod("1W")
	require.NoError(t, err)

	// Wednesday 2024-01-03 -> Sunday 2024-01-07
	assert.Equal(t, day(2024, 1, 7), step.Next(day(2024, 1, 3)))
	// Sunday advances a full week
	assert.Equal(t, day(2024, 1, 14), step.Next(day(2024, 1, 7)))
}

func TestHoldStepQuarterlyAndYearly(t *testing.T) {
	q, err := ParseHoldPeriod("1Q")
	require.NoError(t, err)
	assert.Equal(t, day(2024, 3, 31), q.Next(day(2024, 2, 10)))
	assert.Equal(t, day(2024, 6, 30), q.Next(day(2024, 3, 31)))

	y, err := ParseHoldPeriod("1Y")
	require.NoError(t, err)
	assert.Equal(t, day(2024, 12, 31), y.Next(day(2024, 5, 1)))
	assert.Equal(t, day(2025, 12, 31), y.Next(day(2024, 12, 31)))
}

func TestScheduleMonthlyOverOneYear(t *testing.T) {
	sessions := BusinessDaySessions(day(2023, 1, 1), day(2023, 12, 31))
	require.Greater(t, len(sessions), 250)

	dates, err := Schedule(sessions, "1M", 0)
	require.NoError(t, err)

	// roughly one rebalance per month, strictly increasing
	assert.GreaterOrEqual(t, len(dates), 11)
	assert.LessOrEqual(t, len(dates), 12)
	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i].After(dates[i-1]))
	}
	// every emitted date is an actual session
	set := make(map[time.Time]bool, len(sessions))
	for _, s := range sessions {
		set[s] = true
	}
	for _, d := range dates {
		assert.True(t, set[d], "date %v not a session", d)
	}
}

func TestScheduleOffsetShiftsEarlier(t *testing.T) {
	sessions := BusinessDaySessions(day(2023, 1, 1), day(2023, 6, 30))
	base, err := Schedule(sessions, "1M", 0)
	require.NoError(t, err)
	shifted, err := Schedule(sessions, "1M", -2)
	require.NoError(t, err)
	require.Equal(t, len(base), len(shifted))

	index := make(map[time.Time]int, len(sessions))
	for i, s := range sessions {
		index[s] = i
	}
	for i := range base {
		assert.Equal(t, index[base[i]]-2, index[shifted[i]])
	}
}

func TestScheduleDeterministic(t *testing.T) {
	sessions := BusinessDaySessions(day(2022, 1, 1), day(2022, 12, 31))
	a, err := Schedule(sessions, "2W", 0)
	require.NoError(t, err)
	b, err := Schedule(sessions, "2W", 0)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestScheduleEmptyAndInvalid(t *testing.T) {
	dates, err := Schedule(nil, "1M", 0)
	require.NoError(t, err)
	assert.Empty(t, dates)

	_, err = Schedule([]time.Time{day(2024, 1, 2)}, "banana", 0)
	assert.Error(t, err)
}

func TestBusinessDaySessionsSkipsWeekends(t *testing.T) {
	sessions := BusinessDaySessions(day(2024, 1, 5), day(2024, 1, 9))
	// Fri, Mon, Tue
	require.Len(t, sessions, 3)
	assert.Equal(t, day(2024, 1, 5), sessions[0])
	assert.Equal(t, day(2024, 1, 8), sessions[1])
}
