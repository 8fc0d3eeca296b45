package engine

import (
	"encoding/json"
	"log/slog"

	"github.com/Luis85/flowti-sub000/internal/catalog"
	"github.com/Luis85/flowti-sub000/internal/event"
	"github.com/Luis85/flowti-sub000/internal/orders"
	"github.com/Luis85/flowti-sub000/internal/player"
	"github.com/Luis85/flowti-sub000/internal/timer"
)

// Stage is one ordered step of the tick pipeline. Stages read and
// mutate only their slice of the context and communicate through the
// bus; no stage calls another stage.
type Stage interface {
	Name() string
	Run(*Context) error
}

type stageFunc struct {
	name string
	fn   func(*Context) error
}

func (s stageFunc) Name() string           { return s.name }
func (s stageFunc) Run(ctx *Context) error { return s.fn(ctx) }

// Player recovery rates in energy points per simulated minute.
const (
	nightRecoveryRate   = 0.05
	restingRecoveryRate = 0.2
)

// intentsStage is the pre-tick hook: it translates user-intent events
// from the presentation boundary into state changes.
func intentsStage() Stage {
	return stageFunc{name: "intents", fn: func(ctx *Context) error {
		for range ctx.Bus.Consume("intents", event.PauseToggled) {
			ctx.Clock.Paused = !ctx.Clock.Paused
			slog.Info("pause toggled", "paused", ctx.Clock.Paused)
		}
		for _, ev := range ctx.Bus.Consume("intents", event.MessageAction) {
			req, ok := ev.Payload.(MessageActionRequest)
			if !ok {
				continue
			}
			applyMessageAction(ctx, req)
		}
		for _, ev := range ctx.Bus.Consume("intents", event.OrderAction) {
			req, ok := ev.Payload.(OrderActionRequest)
			if !ok {
				continue
			}
			applyOrderAction(ctx, req)
		}
		return nil
	}}
}

func applyMessageAction(ctx *Context, req MessageActionRequest) {
	now := ctx.Clock.SimNowMs
	var ok bool
	var kind event.Kind
	switch req.Action {
	case "read":
		ok, kind = ctx.Inbox.MarkRead(req.MessageID, now), event.MessageRead
	case "spam":
		ok, kind = ctx.Inbox.MarkSpam(req.MessageID, now), event.MessageMarkedSpam
	case "delete":
		ok, kind = ctx.Inbox.Delete(req.MessageID, now), event.MessageDeleted
	case "archive":
		ok, kind = ctx.Inbox.Archive(req.MessageID, now), event.MessageArchived
	case "collect":
		collectMessage(ctx, req.MessageID)
		return
	default:
		ctx.Bus.Publish(event.ActionRejected, ActionRejected{
			Target: req.MessageID, Action: req.Action, Reason: "unknown message action",
		})
		return
	}
	if !ok {
		// Not-found or already-stamped; expected, reported, not an error.
		ctx.Bus.Publish(event.ActionRejected, ActionRejected{
			Target: req.MessageID, Action: req.Action, Reason: "message missing or action already applied",
		})
		return
	}
	ctx.Bus.Publish(kind, req.MessageID)
}

// collectMessage turns a message's line items into a fresh sales order
// and marks the message read.
func collectMessage(ctx *Context, messageID string) {
	msg, found := ctx.Inbox.Get(messageID)
	if !found || len(msg.LineItems) == 0 {
		ctx.Bus.Publish(event.ActionRejected, ActionRejected{
			Target: messageID, Action: "collect", Reason: "message missing or has no line items",
		})
		return
	}
	st := ctx.Scratch("order-gen")
	id := st.NextID("ord", ctx.Clock.DayIndex, ctx.Clock.MinuteOfDay)
	o := orders.SalesOrder{
		ID:        id,
		Customer:  msg.Author,
		LineItems: msg.LineItems,
		Total:     itemsTotal(msg.LineItems),
		Status:    orders.StatusNew,
		CreatedAt: ctx.Clock.SimNowMs,
	}
	if !ctx.Orders.Add(o) {
		return // duplicate id, consuming store rejects
	}
	ctx.Inbox.MarkRead(messageID, ctx.Clock.SimNowMs)
	ctx.Bus.Publish(event.OrderCreated, o)
}

func applyOrderAction(ctx *Context, req OrderActionRequest) {
	now := ctx.Clock.SimNowMs
	var to orders.Status
	var kind event.Kind
	switch req.Action {
	case "process":
		to, kind = orders.StatusActive, event.OrderUpdated
	case "ship":
		to, kind = orders.StatusShipped, event.OrderShipped
	case "close":
		to, kind = orders.StatusClosed, event.OrderClosed
	case "cancel":
		to, kind = orders.StatusCancelled, event.OrderCancelled
	default:
		ctx.Bus.Publish(event.ActionRejected, ActionRejected{
			Target: req.OrderID, Action: req.Action, Reason: "unknown order action",
		})
		return
	}
	res := ctx.Orders.Transition(req.OrderID, to, now, "")
	if !res.OK {
		ctx.Bus.Publish(event.ActionRejected, ActionRejected{
			Target: req.OrderID, Action: req.Action, Reason: res.Reason,
		})
		return
	}
	if to == orders.StatusActive {
		schedulePayment(ctx, req.OrderID)
	}
	o, _ := ctx.Orders.Get(req.OrderID)
	ctx.Bus.Publish(kind, o)
}

// clockStage advances simulated time and announces phase boundaries.
func clockStage() Stage {
	return stageFunc{name: "clock", fn: func(ctx *Context) error {
		prev := ctx.Clock.Phase
		ctx.Clock.Advance(ctx.DeltaMs)
		if ctx.Clock.Phase != prev {
			ctx.Bus.Publish(event.PhaseChanged, PhaseChange{From: prev, To: ctx.Clock.Phase})
		}
		return nil
	}}
}

// timersStage publishes the trigger of every expired timer. Trigger
// payloads travel as encoded JSON; the consuming stage decodes them.
func timersStage() Stage {
	return stageFunc{name: "timers", fn: func(ctx *Context) error {
		for _, t := range ctx.Timers.PollExpired(ctx.Clock.SimNowMs) {
			ctx.Bus.Publish(t.Trigger.Kind, t.Trigger.Payload)
		}
		return nil
	}}
}

// playerStage handles passive recovery by phase and condition.
func playerStage() Stage {
	return stageFunc{name: "player-condition", fn: func(ctx *Context) error {
		deltaMin := float64(ctx.DeltaMs) / msPerMinute
		if deltaMin <= 0 {
			return nil
		}
		if ctx.Player.Condition == player.Resting {
			ctx.Player.Recover(deltaMin * restingRecoveryRate)
		} else if ctx.Clock.Phase == PhaseNight {
			ctx.Player.Recover(deltaMin * nightRecoveryRate)
		}
		return nil
	}}
}

// catalogStage refreshes derived catalog views and store caps from
// settings. Settings themselves only change between ticks.
func catalogStage() Stage {
	return stageFunc{name: "catalog-sync", fn: func(ctx *Context) error {
		ctx.Sellable = ctx.Catalog.SellableProducts()
		ctx.Inbox.SetCap(ctx.Settings.InboxCap)
		return nil
	}}
}

// schedulePayment creates the payment timer for an order entering
// active: due in PaymentDelayDays plus jitter drawn from the payments
// stage RNG.
func schedulePayment(ctx *Context, orderID string) {
	src, st := ctx.source("payments")
	defer keepSource(src, st)

	s := ctx.Settings
	jitter := src.Range(-s.PaymentJitterDays, s.PaymentJitterDays)
	days := s.PaymentDelayDays + jitter
	if days < 0.25 {
		days = 0.25
	}
	payload, err := json.Marshal(PaymentDue{OrderID: orderID})
	if err != nil {
		slog.Error("payment schedule failed", "order", orderID, "error", err)
		return
	}
	ctx.Timers.Add(ctx.Clock.SimNowMs, int64(days*msPerDay), timer.Trigger{
		Kind:    event.PaymentDue,
		Payload: payload,
	}, timer.Options{ID: "payment-" + orderID, Source: "payments"})
}

// paymentsStage resolves due payments into paid or failed orders.
func paymentsStage() Stage {
	return stageFunc{name: "payments", fn: func(ctx *Context) error {
		due := ctx.Bus.Consume("payments", event.PaymentDue)
		if len(due) == 0 {
			return nil
		}
		src, st := ctx.source("payments")
		defer keepSource(src, st)

		now := ctx.Clock.SimNowMs
		for _, ev := range due {
			raw, ok := ev.Payload.(json.RawMessage)
			if !ok {
				continue
			}
			var pd PaymentDue
			if err := json.Unmarshal(raw, &pd); err != nil || pd.OrderID == "" {
				continue
			}
			o, found := ctx.Orders.Get(pd.OrderID)
			if !found || o.Terminal() {
				continue // cancelled while payment was pending
			}
			if src.Chance(ctx.Settings.PaymentSuccessChance) {
				if res := ctx.Orders.Transition(pd.OrderID, orders.StatusPaid, now, ""); res.OK {
					ctx.Bus.Publish(event.PaymentCollected, PaymentResult{OrderID: pd.OrderID, Amount: o.Total})
				}
			} else {
				reason := "payment declined by customer bank"
				if res := ctx.Orders.Transition(pd.OrderID, orders.StatusFailed, now, reason); res.OK {
					ctx.Bus.Publish(event.PaymentFailed, PaymentResult{OrderID: pd.OrderID, Amount: o.Total, Reason: reason})
				}
			}
		}
		return nil
	}}
}

// postTickStage publishes the tick snapshot for the boundaries.
func postTickStage() Stage {
	return stageFunc{name: "post-tick", fn: func(ctx *Context) error {
		ctx.Bus.Publish(event.TickSnapshot, TickInfo{Clock: *ctx.Clock, Ctx: ctx})
		return nil
	}}
}

// diagnosticsStage logs stage faults surfaced during this tick. It is
// always run, even when the tick aborted early.
func diagnosticsStage() Stage {
	return stageFunc{name: "diagnostics", fn: func(ctx *Context) error {
		for _, ev := range ctx.Bus.Consume("diagnostics", event.StageError) {
			if f, ok := ev.Payload.(StageFault); ok {
				slog.Error("stage fault", "tick", ev.Tick, "stage", f.Stage, "error", f.Err)
			}
		}
		return nil
	}}
}

func itemsTotal(items []catalog.LineItem) float64 {
	total := 0.0
	for _, li := range items {
		total += float64(li.Quantity) * li.Price
	}
	return total
}
