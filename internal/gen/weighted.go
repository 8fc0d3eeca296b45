// Package gen implements the procedural generator family: weighted
// catalog selection gated by time-of-day, weekend and demand context,
// throttled per generator and capped per tick.
package gen

import (
	"fmt"
	"math"

	"github.com/Luis85/flowti-sub000/internal/catalog"
	"github.com/Luis85/flowti-sub000/internal/rng"
)

// factorFloor keeps context factors from zeroing an entry outright.
const factorFloor = 0.01

// Weight computes the contextual weight of a catalog entry. A base
// weight at or below zero, or a non-finite product, collapses to zero.
func Weight(base float64, curve catalog.Curve, weekendFactor float64, minute int, weekend bool) float64 {
	if base <= 0 {
		return 0
	}
	tod := clampFactor(curve.Factor(minute))
	wk := 1.0
	if weekend {
		wk = clampFactor(weekendFactor)
	}
	w := base * tod * wk
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0
	}
	return w
}

func clampFactor(f float64) float64 {
	if math.IsNaN(f) {
		return factorFloor
	}
	if f < factorFloor {
		return factorFloor
	}
	return f
}

// WeightedPick selects an index proportional to non-negative weights,
// given a uniform roll r in [0, 1). Returns -1 when the total weight
// is not positive. Floating-point shortfall falls back to the last
// item, a deliberate deterministic tie-break.
func WeightedPick(weights []float64, r float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return -1
	}
	if r < 0 {
		r = 0
	}
	if r > 0.999999999 {
		r = 0.999999999
	}
	remain := r * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		remain -= w
		if remain <= 0 {
			return i
		}
	}
	return len(weights) - 1
}

// ArrivalCount decides how many items a tick produces. It is a bounded
// counting loop, a low-fidelity stand-in for a Poisson draw kept for
// behavioral parity with the original tuning: each unit of expected
// arrivals is one biased coin flip, so the tail is clipped at max.
func ArrivalCount(expected float64, max int, src *rng.Source) int {
	if expected <= 0 || max <= 0 {
		return 0
	}
	count := 0
	remain := expected
	for count < max && remain > 0 {
		p := remain
		if p > 1 {
			p = 1
		}
		if !src.Chance(p) {
			break
		}
		count++
		remain--
	}
	return count
}

// State is one generator's persistent scratch: its own RNG seed, a
// monotonic sequence counter and the last spawn time for throttling.
// Stored in the engine's per-stage scratch map, never in closures.
type State struct {
	Seed        rng.State `json:"seed"`
	Seq         int64     `json:"seq"`
	LastSpawnMs int64     `json:"last_spawn_ms"`
}

// NextID returns a deterministic, collision-resistant id from the day
// index, minute of day and the generator's sequence counter.
func (s *State) NextID(prefix string, day, minute int) string {
	s.Seq++
	return fmt.Sprintf("%s-%d-%d-%d", prefix, day, minute, s.Seq)
}
