// Package engine provides the tick-driven stage pipeline that advances
// the simulation. The scheduler owns the shared context and is the only
// component allowed to sequence stages.
package engine

import (
	"time"

	"github.com/ncruces/go-strftime"
)

// Phase is a named segment of the simulated day.
type Phase string

const (
	PhaseNight   Phase = "night"
	PhaseMorning Phase = "morning"
	PhaseWork    Phase = "work"
	PhaseSession Phase = "session"
	PhaseWrapup  Phase = "wrapup"
)

// Phase boundaries in minutes of day. Ordered; the last segment runs
// to midnight.
const (
	morningStartMin = 360  // 06:00
	workStartMin    = 540  // 09:00
	sessionStartMin = 780  // 13:00
	wrapupStartMin  = 1080 // 18:00
	minutesPerDay   = 1440
)

const msPerMinute = 60_000
const msPerDay = minutesPerDay * msPerMinute

// PhaseOf derives the phase from a minute of day. Pure.
func PhaseOf(minute int) Phase {
	switch {
	case minute < morningStartMin:
		return PhaseNight
	case minute < workStartMin:
		return PhaseMorning
	case minute < sessionStartMin:
		return PhaseWork
	case minute < wrapupStartMin:
		return PhaseSession
	default:
		return PhaseWrapup
	}
}

// Clock is the simulated time state. Owned by the scheduler; mutated
// only by the clock stage.
type Clock struct {
	SimNowMs    int64   `json:"sim_now_ms"`
	DayIndex    int     `json:"day_index"`
	MinuteOfDay int     `json:"minute_of_day"`
	Phase       Phase   `json:"phase"`
	Speed       float64 `json:"speed"`
	Paused      bool    `json:"paused"`
}

// NewClock starts at day 0, minute 0, speed 1.
func NewClock() *Clock {
	return &Clock{Phase: PhaseOf(0), Speed: 1}
}

// Advance moves simulated time forward and rederives day, minute and
// phase. MinuteOfDay wraps at 1440 and bumps DayIndex.
func (c *Clock) Advance(deltaMs int64) {
	if deltaMs < 0 {
		deltaMs = 0
	}
	c.SimNowMs += deltaMs
	c.DayIndex = int(c.SimNowMs / msPerDay)
	c.MinuteOfDay = int(c.SimNowMs % msPerDay / msPerMinute)
	c.Phase = PhaseOf(c.MinuteOfDay)
}

// Weekend reports whether the current day is a weekend day (7-day
// weeks, days 5 and 6).
func (c *Clock) Weekend() bool {
	return c.DayIndex%7 >= 5
}

// calendarEpoch anchors simulated day 0 for display purposes only.
var calendarEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Stamp renders the simulated instant as a calendar timestamp for
// logs and the status endpoint.
func (c *Clock) Stamp() string {
	t := calendarEpoch.Add(time.Duration(c.SimNowMs) * time.Millisecond)
	return strftime.Format("%Y-%m-%d %H:%M", t)
}
