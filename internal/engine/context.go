package engine

import (
	"github.com/Luis85/flowti-sub000/internal/catalog"
	"github.com/Luis85/flowti-sub000/internal/event"
	"github.com/Luis85/flowti-sub000/internal/gen"
	"github.com/Luis85/flowti-sub000/internal/inbox"
	"github.com/Luis85/flowti-sub000/internal/orders"
	"github.com/Luis85/flowti-sub000/internal/player"
	"github.com/Luis85/flowti-sub000/internal/rng"
	"github.com/Luis85/flowti-sub000/internal/settings"
	"github.com/Luis85/flowti-sub000/internal/task"
	"github.com/Luis85/flowti-sub000/internal/timer"
)

// TickError is a recorded stage fault. The tick it happened in is not
// rolled back; the fault is surfaced through the diagnostics stage.
type TickError struct {
	Tick  int    `json:"tick"`
	Stage string `json:"stage"`
	Err   string `json:"err"`
}

// Context is the shared simulation state passed to every stage. There
// are no ambient globals: whichever stage is scheduled to own a field
// for that step mutates it in place, under the single-thread guarantee.
type Context struct {
	Clock    *Clock
	Bus      *event.Bus
	Timers   *timer.Store
	Inbox    *inbox.Store
	Orders   *orders.Store
	Player   *player.State
	Tasks    *task.Log
	Catalog  *catalog.Catalog
	Settings settings.Settings
	Demand   *gen.Demand

	// Sellable is the product view refreshed by the catalog sync stage
	// and read by the order generator.
	Sellable []catalog.Product

	// DeltaMs is the simulated delta for the current tick, computed by
	// the scheduler before any stage runs.
	DeltaMs int64

	// Tick is the current tick number (1-based).
	Tick int

	// Errors is the ring of recent tick errors kept for diagnostics.
	Errors []TickError

	scratch map[string]*gen.State
}

// NewContext builds the initial simulation state for a settings value.
func NewContext(s settings.Settings, cat *catalog.Catalog) *Context {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Context{
		Clock:    NewClock(),
		Bus:      event.NewBus(),
		Timers:   timer.NewStore(),
		Inbox:    inbox.NewStore(s.InboxCap),
		Orders:   orders.NewStore(),
		Player:   player.New(),
		Tasks:    task.NewLog(),
		Catalog:  cat,
		Settings: s,
		Demand:   gen.NewDemand(s.Seed),
		scratch:  make(map[string]*gen.State),
	}
}

// Scratch returns the named stage's persistent scratch record,
// creating it with a seed derived from the world seed and the stage
// name on first use. Injected state, not hidden closure state.
func (c *Context) Scratch(stage string) *gen.State {
	st, ok := c.scratch[stage]
	if !ok {
		seed := rng.State(c.Settings.Seed)
		for _, b := range []byte(stage) {
			seed = seed*31 + rng.State(b)
		}
		st = &gen.State{Seed: seed}
		c.scratch[stage] = st
	}
	return st
}

// source borrows a stage's scratch seed as an RNG source. The caller
// must hand the advanced state back with keepSource.
func (c *Context) source(stage string) (*rng.Source, *gen.State) {
	st := c.Scratch(stage)
	return rng.NewSource(st.Seed), st
}

func keepSource(src *rng.Source, st *gen.State) {
	st.Seed = src.State()
}

// recordError appends to the diagnostics ring (last 100 kept).
func (c *Context) recordError(e TickError) {
	c.Errors = append(c.Errors, e)
	if len(c.Errors) > 100 {
		c.Errors = c.Errors[len(c.Errors)-100:]
	}
}
