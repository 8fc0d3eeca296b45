// Package task implements the task resolution pipeline: a completion
// signal is turned into a skill check, and the check's outcome into
// rewards. A task id resolves at most once.
package task

import (
	"github.com/Luis85/flowti-sub000/internal/dice"
)

// Outcome is the task-level result mapped from a dice outcome.
type Outcome string

const (
	OutcomeCritical        Outcome = "critical"
	OutcomeSuccess         Outcome = "success"
	OutcomePartial         Outcome = "partial"
	OutcomeFailure         Outcome = "failure"
	OutcomeCriticalFailure Outcome = "critical-failure"
)

// partialMargin is the widest failing margin still counted as a
// partial result rather than a plain failure.
const partialMargin = -3

// Signal is a "task completed" input. Override pointers, when set,
// take precedence over the context's computed base costs.
type Signal struct {
	TaskID         string   `json:"task_id"`
	Source         string   `json:"source,omitempty"` // inbox message id, order id, ...
	Kind           string   `json:"kind,omitempty"`
	Difficulty     int      `json:"difficulty"`
	SkillKey       string   `json:"skill_key,omitempty"`
	XPOverride     *float64 `json:"xp_override,omitempty"`
	EnergyOverride *float64 `json:"energy_override,omitempty"`
	TimeOverride   *int     `json:"time_override,omitempty"`
}

// Context is the immutable snapshot a resolution is computed from,
// built once per signal.
type Context struct {
	ID          string  `json:"id"`
	Source      string  `json:"source,omitempty"`
	Kind        string  `json:"kind"`
	Difficulty  int     `json:"difficulty"`
	SkillKey    string  `json:"skill_key"`
	BaseXP      float64 `json:"base_xp"`
	BaseEnergy  float64 `json:"base_energy"`
	BaseTimeMin int     `json:"base_time_min"`
}

// BuildContext derives the context from a signal. The skill key
// defaults to "general" unless the signal names one.
func BuildContext(sig Signal) Context {
	d := sig.Difficulty
	if d < 0 {
		d = 0
	}
	if d > 100 {
		d = 100
	}
	kind := sig.Kind
	if kind == "" {
		kind = "generic"
	}
	skill := sig.SkillKey
	if skill == "" {
		skill = "general"
	}
	return Context{
		ID:          sig.TaskID,
		Source:      sig.Source,
		Kind:        kind,
		Difficulty:  d,
		SkillKey:    skill,
		BaseXP:      10 + float64(d)*0.5,
		BaseEnergy:  4 + float64(d)*0.1,
		BaseTimeMin: 15 + d/2,
	}
}

// Modifier maps task difficulty (0-100) to a dice modifier band.
func Modifier(difficulty int) int {
	switch {
	case difficulty <= 15:
		return +4
	case difficulty <= 30:
		return +2
	case difficulty <= 55:
		return 0
	case difficulty <= 70:
		return -2
	case difficulty <= 80:
		return -4
	case difficulty <= 90:
		return -6
	case difficulty <= 97:
		return -8
	default:
		return -10
	}
}

// MapOutcome converts a dice result to a task outcome and its reward
// multiplier. A narrow failure (within three points of the target)
// still yields a partial reward.
func MapOutcome(r dice.Result) (Outcome, float64) {
	switch r.Outcome {
	case dice.CriticalSuccess:
		return OutcomeCritical, 1.5
	case dice.Success:
		return OutcomeSuccess, 1.0
	case dice.CriticalFailure:
		return OutcomeCriticalFailure, 0.0
	default:
		if r.Margin >= partialMargin {
			return OutcomePartial, 0.5
		}
		return OutcomeFailure, 0.1
	}
}

// Rewards are the final computed grants and costs of one resolution.
type Rewards struct {
	XP          float64 `json:"xp"`
	EnergyCost  float64 `json:"energy_cost"`
	TimeCostMin int     `json:"time_cost_min"`
}

// ComputeRewards applies the outcome multiplier and signal overrides.
// Overrides replace the base values before the multiplier hits the xp.
func ComputeRewards(ctx Context, sig Signal, multiplier float64) Rewards {
	xp := ctx.BaseXP
	if sig.XPOverride != nil {
		xp = *sig.XPOverride
	}
	energy := ctx.BaseEnergy
	if sig.EnergyOverride != nil {
		energy = *sig.EnergyOverride
	}
	timeMin := ctx.BaseTimeMin
	if sig.TimeOverride != nil {
		timeMin = *sig.TimeOverride
	}
	return Rewards{
		XP:          xp * multiplier,
		EnergyCost:  energy,
		TimeCostMin: timeMin,
	}
}

// ResolutionRecord is the durable fact that a task resolved. At most
// one exists per task id.
type ResolutionRecord struct {
	ID      string      `json:"id"`
	TaskID  string      `json:"task_id"`
	Outcome Outcome     `json:"outcome"`
	Roll    dice.Result `json:"roll"`
	Rewards Rewards     `json:"rewards"`
	AtMs    int64       `json:"at_ms"`
}

// Log is the append-only resolution history plus a last-by-id index.
type Log struct {
	records []ResolutionRecord
	byTask  map[string]int
	nextID  int64
}

// NewLog creates an empty resolution log.
func NewLog() *Log {
	return &Log{byTask: make(map[string]int)}
}

// Resolved reports whether the task id already has a record. This is
// the idempotence guard and runs before any side effect.
func (l *Log) Resolved(taskID string) bool {
	_, ok := l.byTask[taskID]
	return ok
}

// NextID mints a record id.
func (l *Log) NextID() int64 {
	l.nextID++
	return l.nextID
}

// Counter reads the id counter without advancing it, for snapshots.
func (l *Log) Counter() int64 {
	return l.nextID
}

// Append stores a record. A duplicate task id is rejected with false
// and nothing is written.
func (l *Log) Append(rec ResolutionRecord) bool {
	if _, dup := l.byTask[rec.TaskID]; dup {
		return false
	}
	l.byTask[rec.TaskID] = len(l.records)
	l.records = append(l.records, rec)
	return true
}

// Last returns the record for a task id.
func (l *Log) Last(taskID string) (ResolutionRecord, bool) {
	i, ok := l.byTask[taskID]
	if !ok {
		return ResolutionRecord{}, false
	}
	return l.records[i], true
}

// All returns the full history in append order.
func (l *Log) All() []ResolutionRecord {
	out := make([]ResolutionRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len reports the number of resolutions.
func (l *Log) Len() int {
	return len(l.records)
}

// Restore replaces the log from a snapshot.
func (l *Log) Restore(records []ResolutionRecord, nextID int64) {
	l.records = l.records[:0]
	l.byTask = make(map[string]int, len(records))
	l.nextID = nextID
	for _, rec := range records {
		if _, dup := l.byTask[rec.TaskID]; dup {
			continue
		}
		l.byTask[rec.TaskID] = len(l.records)
		l.records = append(l.records, rec)
	}
}
