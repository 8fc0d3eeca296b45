package engine

import (
	"fmt"
	"log/slog"

	"github.com/Luis85/flowti-sub000/internal/event"
	"github.com/Luis85/flowti-sub000/internal/settings"
)

// Scheduler owns the stage pipeline. The stage order is a correctness
// invariant: pre-tick intents, clock, timers, player condition,
// catalog sync, message generation, order generation, payments, task
// resolution, post-tick, diagnostics.
type Scheduler struct {
	ctx     *Context
	stages  []Stage
	diag    Stage
	pending *settings.Patch
	running bool
}

// New builds a scheduler around fresh or restored context state.
func New(ctx *Context) *Scheduler {
	return &Scheduler{
		ctx: ctx,
		stages: []Stage{
			intentsStage(),
			clockStage(),
			timersStage(),
			playerStage(),
			catalogStage(),
			messageGenStage(),
			orderGenStage(),
			paymentsStage(),
			taskStage(),
			postTickStage(),
		},
		diag: diagnosticsStage(),
	}
}

// Context exposes the shared state for boundaries that read snapshots.
func (s *Scheduler) Context() *Context {
	return s.ctx
}

// Start marks the run and announces it.
func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	s.ctx.Bus.Publish(event.SimulationStarted, nil)
	slog.Info("simulation started", "seed", s.ctx.Settings.Seed, "stamp", s.ctx.Clock.Stamp())
}

// Stop announces the end of the run.
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	s.running = false
	s.ctx.Bus.Publish(event.SimulationStopped, nil)
	slog.Info("simulation stopped", "tick", s.ctx.Tick, "stamp", s.ctx.Clock.Stamp())
}

// QueuePatch stores a settings update to apply before the next tick.
// Settings are read-only while stages run.
func (s *Scheduler) QueuePatch(p settings.Patch) {
	s.pending = &p
}

// Advance runs one full tick. Elapsed real time is converted to a
// simulated delta via the speed multiplier; paused means zero delta
// (wall time passes, nothing progresses, but user intents are still
// consumed so un-pausing works).
func (s *Scheduler) Advance(elapsedRealMs, speedMultiplier float64) {
	if s.pending != nil {
		s.ctx.Settings = s.ctx.Settings.Apply(*s.pending)
		s.pending = nil
	}
	if speedMultiplier < 0 {
		speedMultiplier = 0
	}
	s.ctx.Clock.Speed = speedMultiplier

	delta := int64(elapsedRealMs * speedMultiplier)
	if s.ctx.Clock.Paused {
		delta = 0
	}
	s.ctx.DeltaMs = delta
	s.ctx.Tick++
	s.ctx.Bus.SetTick(s.ctx.Tick)

	for _, stage := range s.stages {
		if fault := s.runStage(stage); fault != nil {
			// Fatal for this tick: mutations so far stand, remaining
			// stages are skipped, the next tick proceeds normally.
			s.ctx.recordError(*fault)
			s.ctx.Bus.Publish(event.StageError, StageFault{Stage: fault.Stage, Err: fault.Err})
			break
		}
	}

	// The diagnostics sink always runs, even for an aborted tick.
	if fault := s.runStage(s.diag); fault != nil {
		s.ctx.recordError(*fault)
	}

	s.ctx.Bus.EndTick()
}

// runStage invokes one stage, converting panics and errors into a
// recorded tick fault.
func (s *Scheduler) runStage(stage Stage) (fault *TickError) {
	defer func() {
		if r := recover(); r != nil {
			fault = &TickError{Tick: s.ctx.Tick, Stage: stage.Name(), Err: fmt.Sprintf("panic: %v", r)}
		}
	}()
	if err := stage.Run(s.ctx); err != nil {
		return &TickError{Tick: s.ctx.Tick, Stage: stage.Name(), Err: err.Error()}
	}
	return nil
}
