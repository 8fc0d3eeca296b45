// Package dice implements the roll-under skill resolution mechanic:
// a fixed pool of dice is rolled and the check succeeds when the total
// is at or below an effective target. The engine is stateless aside
// from its configuration, which can be swapped per call-site.
package dice

import "github.com/Luis85/flowti-sub000/internal/rng"

// Outcome classifies a resolved roll.
type Outcome string

const (
	CriticalSuccess Outcome = "critical-success"
	Success         Outcome = "success"
	Failure         Outcome = "failure"
	CriticalFailure Outcome = "critical-failure"
)

// Config holds the pool shape and the critical thresholds.
type Config struct {
	DiceCount int `yaml:"dice_count"`
	DiceSides int `yaml:"dice_sides"`

	// Critical success thresholds.
	AlwaysCritSuccessMax int `yaml:"always_crit_success_max"` // total at or below is always critical
	CritOn5SkillMin      int `yaml:"crit_on_5_skill_min"`     // total 5 is critical when target at least this
	CritOn6SkillMin      int `yaml:"crit_on_6_skill_min"`     // total 6 is critical when target at least this

	// Critical failure thresholds.
	AlwaysCritFailureMin int `yaml:"always_crit_failure_min"` // total at or above is always critical
	CritOn17SkillMax     int `yaml:"crit_on_17_skill_max"`    // total 17 is critical when target at most this
	CritFailureMargin    int `yaml:"crit_failure_margin"`     // failing by this much or more is critical
}

// Standard returns the classic 3d6 configuration.
func Standard() Config {
	return Config{
		DiceCount:            3,
		DiceSides:            6,
		AlwaysCritSuccessMax: 4,
		CritOn5SkillMin:      15,
		CritOn6SkillMin:      16,
		AlwaysCritFailureMin: 18,
		CritOn17SkillMax:     15,
		CritFailureMargin:    10,
	}
}

// Cinematic is forgiving: wider critical-success window, no margin blowups.
func Cinematic() Config {
	c := Standard()
	c.AlwaysCritSuccessMax = 5
	c.CritFailureMargin = 14
	return c
}

// Hardcore punishes bad rolls: narrow criticals, tight failure margin.
func Hardcore() Config {
	c := Standard()
	c.AlwaysCritSuccessMax = 3
	c.CritFailureMargin = 7
	return c
}

// Result is a fully resolved roll. Pure function of target, modifier,
// dice values and configuration.
type Result struct {
	Dice            []int   `json:"dice"`
	Total           int     `json:"total"`
	EffectiveTarget int     `json:"effective_target"`
	Margin          int     `json:"margin"` // effective target minus total
	Outcome         Outcome `json:"outcome"`
}

// Roll resolves one check against target+modifier, drawing dice from src.
func (c Config) Roll(target, modifier int, src *rng.Source) Result {
	dice := make([]int, c.DiceCount)
	total := 0
	for i := range dice {
		dice[i] = src.IntN(c.DiceSides) + 1
		total += dice[i]
	}
	return c.Resolve(target, modifier, dice)
}

// Resolve classifies an already-rolled pool. Exposed so replays and
// tests can feed fixed dice.
func (c Config) Resolve(target, modifier int, dice []int) Result {
	total := 0
	for _, d := range dice {
		total += d
	}
	eff := target + modifier
	r := Result{
		Dice:            dice,
		Total:           total,
		EffectiveTarget: eff,
		Margin:          eff - total,
	}

	success := total <= eff
	switch {
	case success && c.isCritSuccess(total, eff):
		r.Outcome = CriticalSuccess
	case c.isCritFailure(total, eff, r.Margin, success):
		r.Outcome = CriticalFailure
	case success:
		r.Outcome = Success
	default:
		r.Outcome = Failure
	}
	return r
}

func (c Config) isCritSuccess(total, eff int) bool {
	if total <= c.AlwaysCritSuccessMax {
		return true
	}
	if total == 5 && eff >= c.CritOn5SkillMin {
		return true
	}
	if total == 6 && eff >= c.CritOn6SkillMin {
		return true
	}
	return false
}

func (c Config) isCritFailure(total, eff, margin int, success bool) bool {
	if total >= c.AlwaysCritFailureMin {
		return true
	}
	if total == 17 && eff <= c.CritOn17SkillMax {
		return true
	}
	// A failure by a wide margin is catastrophic regardless of raw total.
	if !success && margin <= -c.CritFailureMargin {
		return true
	}
	return false
}

// Probability returns the exact chance of a basic success against
// target+modifier, by brute-force enumeration of every pool combination.
func (c Config) Probability(target, modifier int) float64 {
	eff := target + modifier
	total := 0
	hits := 0
	dice := make([]int, c.DiceCount)
	var walk func(i, sum int)
	walk = func(i, sum int) {
		if i == c.DiceCount {
			total++
			if sum <= eff {
				hits++
			}
			return
		}
		for d := 1; d <= c.DiceSides; d++ {
			dice[i] = d
			walk(i+1, sum+d)
		}
	}
	walk(0, 0)
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Check is one side of a contest.
type Check struct {
	Target   int
	Modifier int
}

// ContestWinner names the side that won a contest.
type ContestWinner string

const (
	WinnerA   ContestWinner = "a"
	WinnerB   ContestWinner = "b"
	WinnerTie ContestWinner = "tie"
)

// ContestResult holds both rolls of a contested check.
type ContestResult struct {
	A      Result
	B      Result
	Winner ContestWinner
}

// Contest rolls two independent checks and compares margins; equal
// margins are a tie.
func (c Config) Contest(a, b Check, src *rng.Source) ContestResult {
	ra := c.Roll(a.Target, a.Modifier, src)
	rb := c.Roll(b.Target, b.Modifier, src)
	res := ContestResult{A: ra, B: rb, Winner: WinnerTie}
	if ra.Margin > rb.Margin {
		res.Winner = WinnerA
	} else if rb.Margin > ra.Margin {
		res.Winner = WinnerB
	}
	return res
}
