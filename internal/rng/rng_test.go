package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_Pure(t *testing.T) {
	v1, s1 := Next(42)
	v2, s2 := Next(42)
	assert.Equal(t, v1, v2, "same seed must yield same value")
	assert.Equal(t, s1, s2, "same seed must yield same successor")
}

func TestNext_Range(t *testing.T) {
	s := State(7)
	for i := 0; i < 10000; i++ {
		var v float64
		v, s = Next(s)
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestSource_Replay(t *testing.T) {
	a := NewSource(1337)
	b := NewSource(1337)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Float(), b.Float(), "sources with equal seeds must replay identically")
	}
	assert.Equal(t, a.State(), b.State())
}

func TestSource_DifferentSeedsDiverge(t *testing.T) {
	a := NewSource(1)
	b := NewSource(2)
	same := 0
	for i := 0; i < 100; i++ {
		if a.Float() == b.Float() {
			same++
		}
	}
	assert.Less(t, same, 5, "different seeds should not track each other")
}

func TestSource_IntN(t *testing.T) {
	src := NewSource(99)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		n := src.IntN(6)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 6)
		seen[n] = true
	}
	assert.Len(t, seen, 6, "all faces should appear over 1000 draws")
}

func TestSource_Chance(t *testing.T) {
	src := NewSource(5)
	assert.False(t, src.Chance(0))
	assert.True(t, src.Chance(1))

	hits := 0
	for i := 0; i < 10000; i++ {
		if src.Chance(0.25) {
			hits++
		}
	}
	assert.InDelta(t, 2500, hits, 200, "0.25 chance should hit about a quarter of the time")
}
