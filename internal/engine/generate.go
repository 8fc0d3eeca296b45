package engine

import (
	"log/slog"

	"github.com/Luis85/flowti-sub000/internal/catalog"
	"github.com/Luis85/flowti-sub000/internal/event"
	"github.com/Luis85/flowti-sub000/internal/gen"
	"github.com/Luis85/flowti-sub000/internal/inbox"
	"github.com/Luis85/flowti-sub000/internal/orders"
	"github.com/Luis85/flowti-sub000/internal/rng"
)

// messageGenStage spawns inbound messages from the message catalog,
// throttled by the minimum gap and the per-tick cap, suppressed when
// the inbox reports itself full.
func messageGenStage() Stage {
	return stageFunc{name: "message-gen", fn: func(ctx *Context) error {
		if ctx.DeltaMs <= 0 || len(ctx.Catalog.Messages) == 0 {
			return nil
		}
		st := ctx.Scratch("message-gen")
		now := ctx.Clock.SimNowMs
		if st.LastSpawnMs > 0 && now-st.LastSpawnMs < int64(ctx.Settings.MinMessageGapMin)*msPerMinute {
			return nil
		}
		if ctx.Inbox.Full() {
			ctx.Bus.Publish(event.InboxFull, ctx.Inbox.Len())
			return nil
		}

		src, st := ctx.source("message-gen")
		defer keepSource(src, st)

		deltaMin := float64(ctx.DeltaMs) / msPerMinute
		expected := ctx.Settings.MessagesPerDay * deltaMin / minutesPerDay
		count := gen.ArrivalCount(expected, ctx.Settings.MaxMessagesPerTick, src)

		for i := 0; i < count && !ctx.Inbox.Full(); i++ {
			tpl := pickMessage(ctx, src)
			if tpl == nil {
				// Degenerate weights: no-op for this tick, logged, not fatal.
				slog.Warn("message generation skipped", "reason", "no positive template weight")
				return nil
			}
			id := st.NextID("msg", ctx.Clock.DayIndex, ctx.Clock.MinuteOfDay)
			msg := inbox.Message{
				ID:        id,
				Type:      tpl.Type,
				Subject:   tpl.Subject,
				Priority:  tpl.Priority,
				Author:    tpl.Author,
				CreatedAt: now,
				Body:      tpl.Body,
				Actions:   tpl.Actions,
				Tags:      tpl.Tags,
				LineItems: tpl.LineItems,
			}
			if !ctx.Inbox.Add(msg) {
				continue // duplicate id or filled up mid-loop
			}
			st.LastSpawnMs = now
			ctx.Bus.Publish(event.MessageAdded, msg)
		}
		return nil
	}}
}

func pickMessage(ctx *Context, src *rng.Source) *catalog.MessageTemplate {
	weights := make([]float64, len(ctx.Catalog.Messages))
	for i, tpl := range ctx.Catalog.Messages {
		weights[i] = gen.Weight(tpl.Weight, tpl.TimeOfDay, tpl.WeekendFactor,
			ctx.Clock.MinuteOfDay, ctx.Clock.Weekend())
	}
	idx := gen.WeightedPick(weights, src.Float())
	if idx < 0 {
		return nil
	}
	return &ctx.Catalog.Messages[idx]
}

// orderGenStage spawns customer orders, modulated by the demand curve
// and suppressed when nothing is sellable.
func orderGenStage() Stage {
	return stageFunc{name: "order-gen", fn: func(ctx *Context) error {
		if ctx.DeltaMs <= 0 || len(ctx.Catalog.Orders) == 0 {
			return nil
		}
		if len(ctx.Sellable) == 0 {
			return nil // no valid targets
		}
		st := ctx.Scratch("order-gen")
		now := ctx.Clock.SimNowMs
		if st.LastSpawnMs > 0 && now-st.LastSpawnMs < int64(ctx.Settings.MinOrderGapMin)*msPerMinute {
			return nil
		}

		src, st := ctx.source("order-gen")
		defer keepSource(src, st)

		deltaMin := float64(ctx.DeltaMs) / msPerMinute
		demand := ctx.Demand.Factor(ctx.Clock.DayIndex, ctx.Clock.MinuteOfDay)
		expected := ctx.Settings.OrdersPerDay * demand * deltaMin / minutesPerDay
		count := gen.ArrivalCount(expected, ctx.Settings.MaxOrdersPerTick, src)

		for i := 0; i < count; i++ {
			tpl := pickOrder(ctx, src)
			if tpl == nil {
				slog.Warn("order generation skipped", "reason", "no positive template weight")
				return nil
			}
			items := priceItems(tpl.LineItems, ctx.Sellable)
			if len(items) == 0 {
				continue // template sells nothing currently offered
			}
			id := st.NextID("ord", ctx.Clock.DayIndex, ctx.Clock.MinuteOfDay)
			o := orders.SalesOrder{
				ID:        id,
				Customer:  tpl.Customer,
				LineItems: items,
				Total:     itemsTotal(items),
				Status:    orders.StatusNew,
				CreatedAt: now,
			}
			if !ctx.Orders.Add(o) {
				continue // duplicate id, consuming store rejects
			}
			st.LastSpawnMs = now
			ctx.Bus.Publish(event.OrderCreated, o)
		}
		return nil
	}}
}

func pickOrder(ctx *Context, src *rng.Source) *catalog.OrderTemplate {
	weights := make([]float64, len(ctx.Catalog.Orders))
	for i, tpl := range ctx.Catalog.Orders {
		weights[i] = gen.Weight(tpl.Weight, tpl.TimeOfDay, tpl.WeekendFactor,
			ctx.Clock.MinuteOfDay, ctx.Clock.Weekend())
	}
	idx := gen.WeightedPick(weights, src.Float())
	if idx < 0 {
		return nil
	}
	return &ctx.Catalog.Orders[idx]
}

// priceItems resolves template line items against the sellable product
// list, filling name and price. Items for unknown or unsellable SKUs
// are dropped.
func priceItems(items []catalog.LineItem, sellable []catalog.Product) []catalog.LineItem {
	bySKU := make(map[string]catalog.Product, len(sellable))
	for _, p := range sellable {
		bySKU[p.SKU] = p
	}
	var out []catalog.LineItem
	for _, li := range items {
		p, ok := bySKU[li.SKU]
		if !ok {
			continue
		}
		qty := li.Quantity
		if qty <= 0 {
			qty = 1
		}
		out = append(out, catalog.LineItem{SKU: p.SKU, Name: p.Name, Quantity: qty, Price: p.Price})
	}
	return out
}
