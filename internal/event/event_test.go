package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_FIFOWithinKind(t *testing.T) {
	b := NewBus()
	b.Publish(MessageAdded, "m1")
	b.Publish(MessageAdded, "m2")
	b.Publish(MessageAdded, "m3")

	got := b.Consume("reader", MessageAdded)
	require.Len(t, got, 3)
	assert.Equal(t, "m1", got[0].Payload)
	assert.Equal(t, "m2", got[1].Payload)
	assert.Equal(t, "m3", got[2].Payload)
}

func TestBus_ConsumeAdvancesCursor(t *testing.T) {
	b := NewBus()
	b.Publish(OrderCreated, "o1")

	first := b.Consume("r", OrderCreated)
	require.Len(t, first, 1)
	assert.Empty(t, b.Consume("r", OrderCreated), "second consume sees nothing new")

	b.Publish(OrderCreated, "o2")
	second := b.Consume("r", OrderCreated)
	require.Len(t, second, 1)
	assert.Equal(t, "o2", second[0].Payload)
}

func TestBus_IndependentReaders(t *testing.T) {
	b := NewBus()
	b.Publish(TaskResolved, "t1")

	assert.Len(t, b.Consume("a", TaskResolved), 1)
	assert.Len(t, b.Consume("b", TaskResolved), 1, "each reader has its own cursor")
	assert.Empty(t, b.Consume("a", TaskResolved))
}

func TestBus_EndTickDropsUnread(t *testing.T) {
	b := NewBus()
	b.Publish(PhaseChanged, "x")
	b.EndTick()
	assert.Empty(t, b.Consume("r", PhaseChanged), "events do not survive the tick")
}

func TestBus_TickStamp(t *testing.T) {
	b := NewBus()
	b.SetTick(7)
	b.Publish(InboxFull, nil)
	got := b.Consume("r", InboxFull)
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].Tick)
}

func TestBus_ObserversSeeEveryPublish(t *testing.T) {
	b := NewBus()
	var seen []Kind
	b.Notify(func(ev Event) { seen = append(seen, ev.Kind) })

	b.Publish(MessageAdded, nil)
	b.Publish(OrderCreated, nil)
	b.EndTick()
	b.Publish(PaymentCollected, nil)

	assert.Equal(t, []Kind{MessageAdded, OrderCreated, PaymentCollected}, seen,
		"observers are out-of-band and unaffected by EndTick")
}
