package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Luis85/flowti-sub000/internal/gen"
	"github.com/Luis85/flowti-sub000/internal/inbox"
	"github.com/Luis85/flowti-sub000/internal/orders"
	"github.com/Luis85/flowti-sub000/internal/player"
	"github.com/Luis85/flowti-sub000/internal/settings"
	"github.com/Luis85/flowti-sub000/internal/task"
	"github.com/Luis85/flowti-sub000/internal/timer"
)

// Snapshot keys. The persisted document is flat: one JSON value per
// store. A loader merges whatever keys are present over defaults, so
// partial or older documents load without failing.
const (
	keyClock    = "clock"
	keySettings = "settings"
	keyPlayer   = "player"
	keyInbox    = "inbox"
	keyOrders   = "orders"
	keyTimers   = "timers"
	keyTasks    = "tasks"
	keyScratch  = "scratch"
	keyTick     = "tick"
)

type timersDoc struct {
	List   []timer.Timer `json:"list"`
	NextID int64         `json:"next_id"`
}

type tasksDoc struct {
	Records []task.ResolutionRecord `json:"records"`
	NextID  int64                   `json:"next_id"`
}

// Snapshot serializes every store into a flat key/value document.
func (c *Context) Snapshot() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		doc[key] = raw
		return nil
	}

	allTasks := tasksDoc{Records: c.Tasks.All(), NextID: c.Tasks.Counter()}
	entries := []struct {
		key string
		v   any
	}{
		{keyClock, c.Clock},
		{keySettings, c.Settings},
		{keyPlayer, c.Player},
		{keyInbox, c.Inbox.All()},
		{keyOrders, c.Orders.All()},
		{keyTimers, timersDoc{List: c.Timers.All(), NextID: c.Timers.NextID()}},
		{keyTasks, allTasks},
		{keyScratch, c.scratch},
		{keyTick, c.Tick},
	}
	for _, e := range entries {
		if err := put(e.key, e.v); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Restore shallow-merges a persisted document over the context's
// current (default) state. Missing keys keep their defaults; a
// malformed value keeps the in-memory state and logs a warning.
func (c *Context) Restore(doc map[string]json.RawMessage) {
	load := func(key string, into any) bool {
		raw, ok := doc[key]
		if !ok {
			return false
		}
		if err := json.Unmarshal(raw, into); err != nil {
			slog.Warn("snapshot field malformed, keeping in-memory value", "key", key, "error", err)
			return false
		}
		return true
	}

	var clk Clock
	if load(keyClock, &clk) {
		*c.Clock = clk
	}
	var s settings.Settings
	if load(keySettings, &s) {
		c.Settings = s
		c.Demand = gen.NewDemand(s.Seed)
	}
	var p player.State
	if load(keyPlayer, &p) {
		if p.Skills == nil {
			p.Skills = map[string]int{}
		}
		*c.Player = p
	}
	var msgs []inbox.Message
	if load(keyInbox, &msgs) {
		c.Inbox.Restore(msgs)
	}
	c.Inbox.SetCap(c.Settings.InboxCap)
	var ords []orders.SalesOrder
	if load(keyOrders, &ords) {
		c.Orders.Restore(ords)
	}
	var td timersDoc
	if load(keyTimers, &td) {
		c.Timers.Restore(td.List, td.NextID)
	}
	var tk tasksDoc
	if load(keyTasks, &tk) {
		c.Tasks.Restore(tk.Records, tk.NextID)
	}
	var scratch map[string]*gen.State
	if load(keyScratch, &scratch) && scratch != nil {
		c.scratch = scratch
	}
	load(keyTick, &c.Tick)
}
