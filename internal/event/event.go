// Package event provides the typed publish/subscribe queue the stage
// pipeline communicates through. Channels are per-kind FIFO; events
// published in stage N of a tick are visible to later stages of the
// same tick and are dropped at tick end. Durable effects go through
// the timer store instead.
package event

// Kind enumerates every event the engine can publish or consume.
// The set is closed: stages switch over kinds, never over payload types.
type Kind string

const (
	// Engine lifecycle and clock.
	SimulationStarted Kind = "simulation-started"
	SimulationStopped Kind = "simulation-stopped"
	TickSnapshot      Kind = "tick"
	PhaseChanged      Kind = "phase-changed"
	StageError        Kind = "stage-error"

	// Inbox.
	MessageAdded      Kind = "message-added"
	MessageRead       Kind = "message-read"
	MessageMarkedSpam Kind = "message-marked-spam"
	MessageDeleted    Kind = "message-deleted"
	MessageArchived   Kind = "message-archived"
	InboxFull         Kind = "inbox-full"

	// Orders and payments.
	OrderCreated     Kind = "order-created"
	OrderUpdated     Kind = "order-updated"
	OrderShipped     Kind = "order-shipped"
	OrderClosed      Kind = "order-closed"
	OrderCancelled   Kind = "order-cancelled"
	PaymentCollected Kind = "payment-collected"
	PaymentFailed    Kind = "payment-failed"

	// Tasks.
	TaskCompleted Kind = "task-completed"
	TaskResolved  Kind = "task-resolved"

	// Payment timers fire this; the payments stage consumes it.
	PaymentDue Kind = "payment-due"

	// User intents published by the presentation boundary.
	PauseToggled  Kind = "pause-toggled"
	MessageAction Kind = "message-action"
	OrderAction   Kind = "order-action"

	// ActionRejected reports a refused user intent back to the boundary.
	ActionRejected Kind = "action-rejected"
)

// Event is one queued fact. Payload shape is fixed per Kind; consumers
// assert it after switching on the kind.
type Event struct {
	Kind    Kind `json:"kind"`
	Tick    int  `json:"tick"`
	Payload any  `json:"payload,omitempty"`
}

// Observer receives every published event synchronously, out of band
// of the consume cursors. Observers must not mutate simulation state;
// they exist for the UI and persistence boundaries.
type Observer func(Event)

// Bus is the per-tick event queue. Not safe for concurrent use; the
// engine is single-threaded by design.
type Bus struct {
	tick      int
	channels  map[Kind][]Event
	cursors   map[string]map[Kind]int
	observers []Observer
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		channels: make(map[Kind][]Event),
		cursors:  make(map[string]map[Kind]int),
	}
}

// SetTick stamps subsequently published events with the current tick.
func (b *Bus) SetTick(tick int) {
	b.tick = tick
}

// Publish appends the event to its kind's channel and notifies
// observers immediately.
func (b *Bus) Publish(kind Kind, payload any) {
	ev := Event{Kind: kind, Tick: b.tick, Payload: payload}
	b.channels[kind] = append(b.channels[kind], ev)
	for _, obs := range b.observers {
		obs(ev)
	}
}

// Consume returns, in publish order, every event of the given kind
// published since this reader's last consume within the current tick.
func (b *Bus) Consume(reader string, kind Kind) []Event {
	cur := b.cursors[reader]
	if cur == nil {
		cur = make(map[Kind]int)
		b.cursors[reader] = cur
	}
	ch := b.channels[kind]
	from := cur[kind]
	if from >= len(ch) {
		return nil
	}
	cur[kind] = len(ch)
	return ch[from:]
}

// Pending reports how many events of the kind are queued this tick.
func (b *Bus) Pending(kind Kind) int {
	return len(b.channels[kind])
}

// EndTick drops all queued events and resets consume cursors. Anything
// unread is gone; cross-tick effects must use timers.
func (b *Bus) EndTick() {
	for k := range b.channels {
		delete(b.channels, k)
	}
	for r := range b.cursors {
		delete(b.cursors, r)
	}
}

// Notify registers an out-of-band observer callback.
func (b *Bus) Notify(obs Observer) {
	b.observers = append(b.observers, obs)
}
