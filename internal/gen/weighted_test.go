package gen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Luis85/flowti-sub000/internal/catalog"
	"github.com/Luis85/flowti-sub000/internal/rng"
)

func TestWeightedPick_Distribution(t *testing.T) {
	weights := []float64{1, 3}
	src := rng.NewSource(42)

	const trials = 100_000
	second := 0
	for i := 0; i < trials; i++ {
		idx := WeightedPick(weights, src.Float())
		require.Contains(t, []int{0, 1}, idx)
		if idx == 1 {
			second++
		}
	}
	assert.InDelta(t, 0.75, float64(second)/trials, 0.01,
		"weight 3 of total 4 should win about 75% of picks")
}

func TestWeightedPick_Degenerate(t *testing.T) {
	assert.Equal(t, -1, WeightedPick(nil, 0.5))
	assert.Equal(t, -1, WeightedPick([]float64{0, 0}, 0.5))
	assert.Equal(t, -1, WeightedPick([]float64{-1, -2}, 0.5))
	assert.Equal(t, -1, WeightedPick([]float64{math.NaN()}, 0.5))
	assert.Equal(t, -1, WeightedPick([]float64{math.Inf(1)}, 0.5))
}

func TestWeightedPick_RollClamping(t *testing.T) {
	weights := []float64{1, 1}
	assert.Equal(t, 0, WeightedPick(weights, -0.5), "negative roll clamps to 0")
	assert.Equal(t, 1, WeightedPick(weights, 1.5), "roll past 1 clamps below the total")
}

func TestWeightedPick_FallbackToLast(t *testing.T) {
	// A roll at the very top of the range lands on the last item, the
	// defined tie-break for floating-point shortfall.
	weights := []float64{1, 1, 1}
	assert.Equal(t, 2, WeightedPick(weights, 0.999999999))
}

func TestWeightedPick_SkipsZeroWeights(t *testing.T) {
	weights := []float64{0, 5, 0}
	for r := 0.0; r < 1.0; r += 0.1 {
		assert.Equal(t, 1, WeightedPick(weights, r))
	}
}

func TestWeight_Gates(t *testing.T) {
	// Base weight <= 0 collapses to zero regardless of factors.
	assert.Zero(t, Weight(0, catalog.CurveFlat, 1, 600, false))
	assert.Zero(t, Weight(-3, catalog.CurveFlat, 1, 600, false))

	// Non-finite products collapse to zero.
	assert.Zero(t, Weight(math.Inf(1), catalog.CurveFlat, 1, 600, false))

	// Weekend factor only applies on weekends and is floored at 0.01.
	w := Weight(10, catalog.CurveFlat, 0, 600, true)
	assert.InDelta(t, 10*0.01, w, 1e-12)
	w = Weight(10, catalog.CurveFlat, 0, 600, false)
	assert.InDelta(t, 10.0, w, 1e-12)
}

func TestWeight_TimeOfDay(t *testing.T) {
	// Work curve boosts business hours and damps the night.
	day := Weight(10, catalog.CurveWork, 1, 10*60, false)
	night := Weight(10, catalog.CurveWork, 1, 2*60, false)
	assert.Greater(t, day, night)
}

func TestArrivalCount_Bounds(t *testing.T) {
	src := rng.NewSource(9)
	assert.Zero(t, ArrivalCount(0, 5, src))
	assert.Zero(t, ArrivalCount(2, 0, src))

	for i := 0; i < 1000; i++ {
		n := ArrivalCount(10, 3, src)
		require.LessOrEqual(t, n, 3, "cap bounds the arrival loop")
	}
}

func TestArrivalCount_ApproximatesRate(t *testing.T) {
	src := rng.NewSource(31)
	total := 0
	const trials = 10_000
	for i := 0; i < trials; i++ {
		total += ArrivalCount(0.5, 3, src)
	}
	// The counting loop is a rough Poisson stand-in: mean should land
	// near the expected rate for small expectations.
	assert.InDelta(t, 0.5, float64(total)/trials, 0.05)
}

func TestState_NextID(t *testing.T) {
	st := &State{}
	a := st.NextID("msg", 2, 340)
	b := st.NextID("msg", 2, 340)
	assert.Equal(t, "msg-2-340-1", a)
	assert.Equal(t, "msg-2-340-2", b)
	assert.NotEqual(t, a, b, "sequence counter keeps same-minute ids unique")
}

func TestDemand_DeterministicAndBounded(t *testing.T) {
	a := NewDemand(1234)
	b := NewDemand(1234)
	for day := 0; day < 30; day++ {
		for _, min := range []int{0, 360, 720, 1080} {
			fa := a.Factor(day, min)
			require.Equal(t, fa, b.Factor(day, min), "same seed, same curve")
			require.GreaterOrEqual(t, fa, 0.5)
			require.LessOrEqual(t, fa, 1.5)
		}
	}
	assert.NotEqual(t, a.Factor(3, 137), NewDemand(999).Factor(3, 137),
		"different seeds should shape different curves")
}
