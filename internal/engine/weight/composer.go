// Package weight converts a ranked, filtered score series into normalized
// target portfolio weights.
package weight

import (
	"math"

	"QuantBench/pkg/series"
)

// Compose selects the top of the ranked series and normalizes the selection
// into weights. A selectCount in (0, 1) is treated as a fraction of the
// candidate set; anything else as an absolute count, with a floor of one.
//
// Positive-scored entries among the selection are preferred as the weighting
// base; when none are positive the whole selection is used so the allocation
// stays usable in all-negative regimes. A zero-sum base falls back to an
// equal split. Otherwise each weight is the entry divided by the sum of
// absolute base values, preserving sign for short positions.
func Compose(ranked series.Series, selectCount float64) map[string]float64 {
	total := ranked.Len()
	if total == 0 {
		return map[string]float64{}
	}
	var take int
	if selectCount > 0 && selectCount < 1 {
		take = int(float64(total) * selectCount)
	} else {
		take = int(selectCount)
	}
	if take < 1 {
		take = 1
	}
	top := ranked.Head(take)

	base := series.New(top.Len())
	for i := 0; i < top.Len(); i++ {
		k, v := top.At(i)
		if v > 0 {
			base.Append(k, v)
		}
	}
	if base.Empty() {
		base = top
	}

	denom := 0.0
	for _, v := range base.Values() {
		denom += math.Abs(v)
	}
	out := make(map[string]float64, base.Len())
	if denom == 0 {
		w := 1.0 / float64(base.Len())
		for _, k := range base.Keys() {
			out[k] = w
		}
		return out
	}
	for i := 0; i < base.Len(); i++ {
		k, v := base.At(i)
		out[k] = v / denom
	}
	return out
}
