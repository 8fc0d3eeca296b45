package gen

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Demand is a smooth deterministic demand curve over simulated time,
// used to modulate order generation. Seeded simplex noise keeps runs
// replayable while avoiding the sawtooth a plain sine would show.
type Demand struct {
	noise opensimplex.Noise
}

// NewDemand builds the curve for a world seed.
func NewDemand(seed uint32) *Demand {
	return &Demand{noise: opensimplex.New(int64(seed))}
}

// Factor returns a multiplier in [0.5, 1.5] for the given day and
// minute. Continuous across day boundaries.
func (d *Demand) Factor(dayIndex, minuteOfDay int) float64 {
	t := float64(dayIndex) + float64(minuteOfDay)/1440.0
	// Eval2 is in [-1, 1]; map to [0.5, 1.5].
	return 1.0 + 0.5*d.noise.Eval2(t*0.35, 0)
}
