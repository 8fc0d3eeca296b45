package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkillLevel_Default(t *testing.T) {
	p := New()
	assert.Equal(t, 10, p.SkillLevel("general"))
	assert.Equal(t, DefaultSkill, p.SkillLevel("never-trained"))
}

func TestSpendEnergy_ClampsAtFloor(t *testing.T) {
	p := New()
	p.Energy = 3
	p.SpendEnergy(10)
	assert.Equal(t, EnergyFloor, p.Energy)
}

func TestSpendEnergy_ExhaustionOnZeroCrossing(t *testing.T) {
	p := New()
	p.Energy = 5

	p.SpendEnergy(5)
	assert.Equal(t, Exhausted, p.Condition)
	assert.Equal(t, 1, p.ExhaustionCount)

	// Already at zero: no second crossing, no second count.
	p.SpendEnergy(5)
	assert.Equal(t, 1, p.ExhaustionCount)
}

func TestSpendEnergy_RestingPaysNothing(t *testing.T) {
	p := New()
	p.Condition = Resting
	p.Energy = 50
	p.SpendEnergy(10)
	assert.Equal(t, 50.0, p.Energy)
}

func TestRecover_ClearsExhaustion(t *testing.T) {
	p := New()
	p.Energy = 1
	p.SpendEnergy(1)
	assert.Equal(t, Exhausted, p.Condition)

	p.Recover(10)
	assert.Equal(t, Normal, p.Condition)
	assert.Equal(t, 10.0, p.Energy)

	p.Recover(1000)
	assert.Equal(t, EnergyCeiling, p.Energy, "recovery clamps at the ceiling")
}

func TestAddXP_IgnoresNegative(t *testing.T) {
	p := New()
	p.AddXP(12.5)
	p.AddXP(-3)
	assert.Equal(t, 12.5, p.XP)
}
