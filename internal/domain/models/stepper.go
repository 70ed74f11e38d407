package models

import (
	"sort"
	"time"
)

// AllocationStepper walks a sorted allocation sequence against a simulated
// clock. It holds the remaining queue and the active allocation explicitly,
// so execution consumers advance it by comparing dates instead of mutating
// shared cursors inside callbacks.
//
// A date gap in the allocation sequence means "hold the previous weights":
// Active keeps returning the last reached allocation until a newer one is due.
type AllocationStepper struct {
	pending []TargetAllocation
	active  *TargetAllocation
}

// NewAllocationStepper copies and sorts the allocations by date.
func NewAllocationStepper(allocations []TargetAllocation) *AllocationStepper {
	queue := make([]TargetAllocation, len(allocations))
	copy(queue, allocations)
	sort.Slice(queue, func(i, j int) bool { return queue[i].Date.Before(queue[j].Date) })
	return &AllocationStepper{pending: queue}
}

// Advance moves the stepper to the simulated date and reports whether the
// active allocation changed, i.e. the consumer should rebalance.
func (s *AllocationStepper) Advance(date time.Time) bool {
	changed := false
	for len(s.pending) > 0 && !s.pending[0].Date.After(date) {
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.active = &next
		changed = true
	}
	return changed
}

// Active returns the allocation currently in force, or nil before the first
// rebalance date is reached.
func (s *AllocationStepper) Active() *TargetAllocation {
	return s.active
}

// Remaining returns the number of allocations not yet reached.
func (s *AllocationStepper) Remaining() int {
	return len(s.pending)
}
