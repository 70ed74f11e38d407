// Package calendar aligns holding-period frequencies onto actual trading
// sessions.
package calendar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// HoldStep is a parsed holding-period frequency such as "1M" or "2W".
type HoldStep struct {
	n    int
	unit byte // 'D', 'W', 'M', 'Q', 'Y'
}

// ParseHoldPeriod parses "<n><unit>" with unit one of D, W, M, Q, Y
// (case-insensitive). M, Q and Y anchor to period end, W to Sunday.
func ParseHoldPeriod(s string) (HoldStep, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(s))
	if len(trimmed) < 2 {
		return HoldStep{}, fmt.Errorf("invalid hold period %q", s)
	}
	unit := trimmed[len(trimmed)-1]
	switch unit {
	case 'D', 'W', 'M', 'Q', 'Y':
	default:
		return HoldStep{}, fmt.Errorf("invalid hold period %q: unknown unit %q", s, string(unit))
	}
	n, err := strconv.Atoi(trimmed[:len(trimmed)-1])
	if err != nil || n <= 0 {
		return HoldStep{}, fmt.Errorf("invalid hold period %q: bad count", s)
	}
	return HoldStep{n: n, unit: unit}, nil
}

// Next advances t by one holding period. Anchored units roll forward to the
// period boundary strictly after t, matching month-end style offsets: from a
// mid-month date one month step lands on that month's end, from a month end
// it lands on the next one.
func (h HoldStep) Next(t time.Time) time.Time {
	switch h.unit {
	case 'D':
		return Normalize(t.AddDate(0, 0, h.n))
	case 'W':
		d := Normalize(t)
		// roll to the Sunday strictly after t
		days := (7 - int(d.Weekday())) % 7
		if days == 0 {
			days = 7
		}
		return d.AddDate(0, 0, days+(h.n-1)*7)
	case 'M':
		steps := h.n
		if Normalize(t).Equal(monthEndPlus(t, 0)) {
			steps++
		}
		return monthEndPlus(t, steps-1)
	case 'Q':
		steps := h.n
		if Normalize(t).Equal(quarterEndPlus(t, 0)) {
			steps++
		}
		return quarterEndPlus(t, steps-1)
	default: // 'Y'
		steps := h.n
		if Normalize(t).Equal(yearEnd(t)) {
			steps++
		}
		return yearEnd(t.AddDate(steps-1, 0, 0))
	}
}

// Schedule produces rebalance dates aligned to the supplied trading sessions.
// A cursor starts at the first session and repeatedly advances by one holding
// period; the emitted date is the session offsetDays positions before the
// first session at or after the advanced target, clamped to the session list.
// Partial trailing periods are dropped, and the result is strictly increasing.
// The function is pure: identical inputs always yield identical schedules.
func Schedule(sessions []time.Time, holdPeriod string, offsetDays int) ([]time.Time, error) {
	step, err := ParseHoldPeriod(holdPeriod)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	list := make([]time.Time, len(sessions))
	for i, s := range sessions {
		list[i] = Normalize(s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Before(list[j]) })

	var out []time.Time
	cursor := list[0]
	idx := 0
	for idx < len(list) {
		target := step.Next(cursor)
		for idx < len(list) && list[idx].Before(target) {
			idx++
		}
		if idx >= len(list) {
			break
		}
		assign := idx - 1 + offsetDays
		if assign < 0 {
			assign = 0
		}
		if assign > len(list)-1 {
			assign = len(list) - 1
		}
		d := list[assign]
		if len(out) == 0 || d.After(out[len(out)-1]) {
			out = append(out, d)
		}
		cursor = list[idx]
	}
	return out, nil
}

// BusinessDaySessions returns Monday-Friday dates between start and end
// inclusive, the fallback session set when no holiday calendar is available.
func BusinessDaySessions(start, end time.Time) []time.Time {
	var out []time.Time
	for d := Normalize(start); !d.After(Normalize(end)); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Normalize strips the time component, returning midnight UTC of t's date.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// monthEndPlus returns the last day of t's month shifted forward by months.
// Day zero of the following month normalizes to the month's final day, which
// sidesteps AddDate overflow on short months.
func monthEndPlus(t time.Time, months int) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+time.Month(months)+1, 0, 0, 0, 0, 0, time.UTC)
}

func quarterEndPlus(t time.Time, quarters int) time.Time {
	y, m, _ := t.Date()
	qm := ((int(m)-1)/3)*3 + 3
	return time.Date(y, time.Month(qm+quarters*3)+1, 0, 0, 0, 0, 0, time.UTC)
}

func yearEnd(t time.Time) time.Time {
	return time.Date(t.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
}
