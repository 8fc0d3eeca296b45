// Package rng provides the deterministic pseudo-random generator every
// stochastic subsystem draws from. The transition is pure: seed in,
// value plus next seed out, so any stage that persists its seed replays
// identically.
package rng

// State is a 32-bit mulberry32 seed.
type State uint32

// Next advances the state and returns a uniform float64 in [0, 1)
// together with the successor state.
func Next(s State) (float64, State) {
	s += 0x6D2B79F5
	z := uint32(s)
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	z ^= z >> 14
	return float64(z) / 4294967296.0, s
}

// Source wraps a State for stages that own their seed across ticks.
// The zero value is a valid (seed 0) source.
type Source struct {
	state State
}

// NewSource creates a source starting at seed.
func NewSource(seed State) *Source {
	return &Source{state: seed}
}

// Float returns a uniform float64 in [0, 1) and advances the state.
func (s *Source) Float() float64 {
	v, next := Next(s.state)
	s.state = next
	return v
}

// IntN returns a uniform int in [0, n). n must be > 0.
func (s *Source) IntN(n int) int {
	return int(s.Float() * float64(n))
}

// Range returns a uniform float64 in [lo, hi).
func (s *Source) Range(lo, hi float64) float64 {
	return lo + s.Float()*(hi-lo)
}

// Chance returns true with probability p (clamped to [0, 1]).
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.Float() < p
}

// State returns the current seed, for persisting across ticks.
func (s *Source) State() State {
	return s.state
}

// Reseed replaces the current seed.
func (s *Source) Reseed(seed State) {
	s.state = seed
}
