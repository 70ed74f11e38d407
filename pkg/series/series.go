package series

import (
	"math"
	"sort"
)

// Series is an ordered instrument -> value mapping. Order is significant:
// ranked series keep instruments sorted by score so downstream selection can
// take the head directly.
type Series struct {
	keys []string
	vals []float64
}

// New returns an empty Series with the given capacity hint.
func New(capacity int) Series {
	return Series{
		keys: make([]string, 0, capacity),
		vals: make([]float64, 0, capacity),
	}
}

// FromMap builds a Series from a map with keys in lexical order, so repeated
// builds from equal maps produce identical series.
func FromMap(m map[string]float64) Series {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := New(len(keys))
	for _, k := range keys {
		s.Append(k, m[k])
	}
	return s
}

// Append adds an entry at the end. Callers are responsible for key uniqueness.
func (s *Series) Append(key string, val float64) {
	s.keys = append(s.keys, key)
	s.vals = append(s.vals, val)
}

// Len returns the number of entries.
func (s Series) Len() int { return len(s.keys) }

// Empty reports whether the series has no entries.
func (s Series) Empty() bool { return len(s.keys) == 0 }

// Keys returns the keys in order. The slice is shared, not copied.
func (s Series) Keys() []string { return s.keys }

// Values returns the values in order. The slice is shared, not copied.
func (s Series) Values() []float64 { return s.vals }

// At returns the entry at position i.
func (s Series) At(i int) (string, float64) { return s.keys[i], s.vals[i] }

// Get looks up a value by key.
func (s Series) Get(key string) (float64, bool) {
	for i, k := range s.keys {
		if k == key {
			return s.vals[i], true
		}
	}
	return 0, false
}

// Has reports whether key is present.
func (s Series) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// ToMap copies the series into a map.
func (s Series) ToMap() map[string]float64 {
	m := make(map[string]float64, len(s.keys))
	for i, k := range s.keys {
		m[k] = s.vals[i]
	}
	return m
}

// DropNaN returns a copy without NaN or infinite values.
func (s Series) DropNaN() Series {
	out := New(len(s.keys))
	for i, k := range s.keys {
		v := s.vals[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out.Append(k, v)
	}
	return out
}

// Head returns the first n entries (or fewer when the series is shorter).
func (s Series) Head(n int) Series {
	if n > len(s.keys) {
		n = len(s.keys)
	}
	out := New(n)
	for i := 0; i < n; i++ {
		out.Append(s.keys[i], s.vals[i])
	}
	return out
}

// Scale returns a copy with every value multiplied by factor.
func (s Series) Scale(factor float64) Series {
	out := New(len(s.keys))
	for i, k := range s.keys {
		out.Append(k, s.vals[i]*factor)
	}
	return out
}

// Select returns the subset of entries whose keys are in keep, preserving the
// receiver's order.
func (s Series) Select(keep map[string]bool) Series {
	out := New(len(s.keys))
	for i, k := range s.keys {
		if keep[k] {
			out.Append(k, s.vals[i])
		}
	}
	return out
}

// SortDesc returns a copy sorted by value descending. Ties keep lexical key
// order so the result is deterministic.
func (s Series) SortDesc() Series {
	idx := make([]int, len(s.keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := s.vals[idx[a]], s.vals[idx[b]]
		if va != vb {
			return va > vb
		}
		return s.keys[idx[a]] < s.keys[idx[b]]
	})
	out := New(len(s.keys))
	for _, i := range idx {
		out.Append(s.keys[i], s.vals[i])
	}
	return out
}

// RankDensePct converts values to dense percentile ranks in (0, 1]:
// rank position among distinct values divided by the distinct count, so ties
// share one slot. With ascending=false the highest raw value receives 1.0;
// with ascending=true the lowest does.
func (s Series) RankDensePct(ascending bool) Series {
	if s.Empty() {
		return Series{}
	}
	distinct := make([]float64, 0, len(s.vals))
	seen := make(map[float64]bool, len(s.vals))
	for _, v := range s.vals {
		if !seen[v] {
			seen[v] = true
			distinct = append(distinct, v)
		}
	}
	sort.Float64s(distinct)
	n := float64(len(distinct))
	pos := make(map[float64]float64, len(distinct))
	for i, v := range distinct {
		if ascending {
			// lowest value -> rank 1.0
			pos[v] = float64(len(distinct)-i) / n
		} else {
			pos[v] = float64(i+1) / n
		}
	}
	out := New(len(s.keys))
	for i, k := range s.keys {
		out.Append(k, pos[s.vals[i]])
	}
	return out
}

// RankPct converts values to ascending percentile ranks using average ranking
// over ties, divided by the entry count (the rank semantics filters apply
// before threshold tests).
func (s Series) RankPct() Series {
	n := len(s.vals)
	if n == 0 {
		return Series{}
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return s.vals[idx[a]] < s.vals[idx[b]] })
	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i
		for j+1 < n && s.vals[idx[j+1]] == s.vals[idx[i]] {
			j++
		}
		// average rank across the tie group, 1-based
		avg := (float64(i+1) + float64(j+1)) / 2
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	out := New(n)
	for i, k := range s.keys {
		out.Append(k, ranks[i]/float64(n))
	}
	return out
}
