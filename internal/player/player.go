// Package player holds the player's skills, energy and condition.
package player

// Condition is the player's current operating state.
type Condition string

const (
	Normal    Condition = "normal"
	Resting   Condition = "resting"
	Exhausted Condition = "exhausted"
)

// Energy bounds. Costs are clamped so energy never leaves this range.
const (
	EnergyFloor   = 0.0
	EnergyCeiling = 100.0
)

// DefaultSkill is the level used for skill keys never trained.
const DefaultSkill = 8

// State is the mutable player record. Owned by the task resolution and
// player-condition stages.
type State struct {
	Skills          map[string]int `json:"skills"`
	XP              float64        `json:"xp"`
	Energy          float64        `json:"energy"`
	Condition       Condition      `json:"condition"`
	TasksCompleted  int            `json:"tasks_completed"`
	TimeSpentMin    int            `json:"time_spent_min"`
	ExhaustionCount int            `json:"exhaustion_count"`
}

// New returns a fresh player at full energy.
func New() *State {
	return &State{
		Skills:    map[string]int{"general": 10},
		Energy:    EnergyCeiling,
		Condition: Normal,
	}
}

// SkillLevel returns the level for a key, falling back to the default
// for untrained skills.
func (p *State) SkillLevel(key string) int {
	if lvl, ok := p.Skills[key]; ok {
		return lvl
	}
	return DefaultSkill
}

// AddXP grants experience. Negative grants are ignored.
func (p *State) AddXP(xp float64) {
	if xp > 0 {
		p.XP += xp
	}
}

// SpendEnergy subtracts cost, clamped to the floor/ceiling. A crossing
// from above zero to exactly zero flips the condition to exhausted and
// counts it. Resting players spend nothing.
func (p *State) SpendEnergy(cost float64) {
	if p.Condition == Resting || cost <= 0 {
		return
	}
	before := p.Energy
	after := before - cost
	if after < EnergyFloor {
		after = EnergyFloor
	}
	if after > EnergyCeiling {
		after = EnergyCeiling
	}
	p.Energy = after
	if before > EnergyFloor && after == EnergyFloor {
		p.Condition = Exhausted
		p.ExhaustionCount++
	}
}

// Recover adds energy, clamped to the ceiling. Leaving zero clears an
// exhausted condition back to normal.
func (p *State) Recover(amount float64) {
	if amount <= 0 {
		return
	}
	p.Energy += amount
	if p.Energy > EnergyCeiling {
		p.Energy = EnergyCeiling
	}
	if p.Condition == Exhausted && p.Energy > EnergyFloor {
		p.Condition = Normal
	}
}
