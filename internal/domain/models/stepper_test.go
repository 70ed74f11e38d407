package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allocOn(y int, m time.Month, d int) TargetAllocation {
	return TargetAllocation{
		Date:    time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Weights: map[string]float64{"aaa": 1},
	}
}

func TestStepperAdvances(t *testing.T) {
	s := NewAllocationStepper([]TargetAllocation{
		allocOn(2024, 2, 1),
		allocOn(2024, 1, 1), // out of order on purpose
		allocOn(2024, 3, 1),
	})
	require.Equal(t, 3, s.Remaining())
	assert.Nil(t, s.Active())

	// before the first rebalance nothing is active
	assert.False(t, s.Advance(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, s.Active())

	assert.True(t, s.Advance(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, s.Active())
	assert.Equal(t, allocOn(2024, 1, 1).Date, s.Active().Date)
	assert.Equal(t, 2, s.Remaining())
}

func TestStepperHoldsThroughGaps(t *testing.T) {
	s := NewAllocationStepper([]TargetAllocation{
		allocOn(2024, 1, 1),
		allocOn(2024, 3, 1),
	})
	require.True(t, s.Advance(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	// a gap date keeps the previous allocation in force
	assert.False(t, s.Advance(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, allocOn(2024, 1, 1).Date, s.Active().Date)

	assert.True(t, s.Advance(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, allocOn(2024, 3, 1).Date, s.Active().Date)
	assert.Equal(t, 0, s.Remaining())
}

func TestStepperSkipsToLatestDue(t *testing.T) {
	s := NewAllocationStepper([]TargetAllocation{
		allocOn(2024, 1, 1),
		allocOn(2024, 2, 1),
		allocOn(2024, 3, 1),
	})
	// jumping over several due dates lands on the latest one
	assert.True(t, s.Advance(time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, allocOn(2024, 2, 1).Date, s.Active().Date)
	assert.Equal(t, 1, s.Remaining())
}
