package engine

import (
	"fmt"

	"github.com/Luis85/flowti-sub000/internal/dice"
	"github.com/Luis85/flowti-sub000/internal/event"
	"github.com/Luis85/flowti-sub000/internal/rng"
	"github.com/Luis85/flowti-sub000/internal/task"
)

// diceFor returns the dice configuration for the active settings
// preset. Presets swap per call-site without shared mutable state.
func diceFor(preset string) dice.Config {
	switch preset {
	case "cinematic":
		return dice.Cinematic()
	case "hardcore":
		return dice.Hardcore()
	default:
		return dice.Standard()
	}
}

// taskStage consumes task-completed signals and resolves each exactly
// once: idempotence guard, context snapshot, skill check, rewards,
// record persisted before side effects, resolved event published for
// every outcome including failures.
func taskStage() Stage {
	return stageFunc{name: "task-resolution", fn: func(ctx *Context) error {
		signals := ctx.Bus.Consume("task-resolution", event.TaskCompleted)
		if len(signals) == 0 {
			return nil
		}
		src, st := ctx.source("task-resolution")
		defer keepSource(src, st)

		cfg := diceFor(ctx.Settings.DicePreset)
		for _, ev := range signals {
			sig, ok := ev.Payload.(task.Signal)
			if !ok {
				continue
			}
			resolveTask(ctx, cfg, sig, src)
		}
		return nil
	}}
}

func resolveTask(ctx *Context, cfg dice.Config, sig task.Signal, src *rng.Source) {
	// (1) idempotence guard: a task resolves at most once.
	if ctx.Tasks.Resolved(sig.TaskID) {
		return
	}

	// (2) context snapshot. A signal referencing an inbox item inherits
	// that message's type as the skill key.
	if sig.SkillKey == "" && sig.Source != "" {
		if msg, found := ctx.Inbox.Get(sig.Source); found {
			sig.SkillKey = msg.Type
		}
	}
	tctx := task.BuildContext(sig)

	// (3)-(5) skill lookup, difficulty band, roll.
	level := ctx.Player.SkillLevel(tctx.SkillKey)
	roll := cfg.Roll(level, task.Modifier(tctx.Difficulty), src)

	// (6)-(7) outcome and rewards.
	outcome, multiplier := task.MapOutcome(roll)
	rewards := task.ComputeRewards(tctx, sig, multiplier)

	// (8) persist the record before any side effect.
	rec := task.ResolutionRecord{
		ID:      fmt.Sprintf("res-%d", ctx.Tasks.NextID()),
		TaskID:  sig.TaskID,
		Outcome: outcome,
		Roll:    roll,
		Rewards: rewards,
		AtMs:    ctx.Clock.SimNowMs,
	}
	if !ctx.Tasks.Append(rec) {
		return
	}

	// (9) apply rewards to player state.
	ctx.Player.AddXP(rewards.XP)
	ctx.Player.TasksCompleted++
	ctx.Player.TimeSpentMin += rewards.TimeCostMin
	ctx.Player.SpendEnergy(rewards.EnergyCost)

	// (10) publish unconditionally so observers react uniformly.
	ctx.Bus.Publish(event.TaskResolved, TaskResolution{
		TaskID:  sig.TaskID,
		Outcome: outcome,
		Rewards: rewards,
	})
}
