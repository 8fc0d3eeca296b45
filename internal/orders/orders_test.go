package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(id string) SalesOrder {
	return SalesOrder{ID: id, Customer: "c", Status: StatusNew, CreatedAt: 100}
}

func TestHappyPath_TimestampsMonotonic(t *testing.T) {
	s := NewStore()
	require.True(t, s.Add(newOrder("o1")))

	require.True(t, s.Transition("o1", StatusActive, 200, "").OK)
	require.True(t, s.Transition("o1", StatusShipped, 300, "").OK)
	require.True(t, s.Transition("o1", StatusClosed, 400, "").OK)

	o, ok := s.Get("o1")
	require.True(t, ok)
	assert.Equal(t, StatusClosed, o.Status)
	require.NotNil(t, o.ProcessedAt)
	require.NotNil(t, o.ShippedAt)
	require.NotNil(t, o.ClosedAt)
	assert.Less(t, *o.ProcessedAt, *o.ShippedAt)
	assert.Less(t, *o.ShippedAt, *o.ClosedAt)
	assert.Equal(t, int64(400), o.UpdatedAt)
}

func TestIllegalTransition_RejectedWithReason(t *testing.T) {
	s := NewStore()
	require.True(t, s.Add(newOrder("o1")))
	require.True(t, s.Transition("o1", StatusActive, 200, "").OK)
	require.True(t, s.Transition("o1", StatusShipped, 300, "").OK)
	require.True(t, s.Transition("o1", StatusClosed, 400, "").OK)

	res := s.Transition("o1", StatusActive, 500, "")
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "illegal transition")

	o, _ := s.Get("o1")
	assert.Equal(t, StatusClosed, o.Status, "rejected request leaves state unchanged")
	assert.Equal(t, int64(400), o.UpdatedAt)
}

func TestUnknownOrder_Rejected(t *testing.T) {
	s := NewStore()
	res := s.Transition("ghost", StatusActive, 1, "")
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "not found")
}

func TestSkippingStates_Rejected(t *testing.T) {
	s := NewStore()
	require.True(t, s.Add(newOrder("o1")))
	assert.False(t, s.Transition("o1", StatusShipped, 200, "").OK, "new cannot jump to shipped")
	assert.False(t, s.Transition("o1", StatusClosed, 200, "").OK)
	assert.False(t, s.Transition("o1", StatusPaid, 200, "").OK, "payment needs an active order")
}

func TestCancel_FromAnyNonTerminal(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"a", "b", "c"} {
		require.True(t, s.Add(newOrder(id)))
	}
	require.True(t, s.Transition("b", StatusActive, 200, "").OK)
	require.True(t, s.Transition("c", StatusActive, 200, "").OK)
	require.True(t, s.Transition("c", StatusShipped, 300, "").OK)

	for _, id := range []string{"a", "b", "c"} {
		res := s.Transition(id, StatusCancelled, 400, "")
		assert.True(t, res.OK, "cancel from %s", id)
	}

	// Terminal states cannot be cancelled again.
	assert.False(t, s.Transition("a", StatusCancelled, 500, "").OK)
}

func TestPaymentOutcomes_Terminal(t *testing.T) {
	s := NewStore()
	require.True(t, s.Add(newOrder("paid")))
	require.True(t, s.Add(newOrder("failed")))
	require.True(t, s.Transition("paid", StatusActive, 200, "").OK)
	require.True(t, s.Transition("failed", StatusActive, 200, "").OK)

	require.True(t, s.Transition("paid", StatusPaid, 300, "").OK)
	require.True(t, s.Transition("failed", StatusFailed, 300, "payment declined").OK)

	p, _ := s.Get("paid")
	assert.True(t, p.Terminal())
	require.NotNil(t, p.PaidAt)

	f, _ := s.Get("failed")
	assert.True(t, f.Terminal())
	assert.Equal(t, "payment declined", f.FailReason)

	assert.False(t, s.Transition("paid", StatusClosed, 400, "").OK)
	assert.False(t, s.Transition("failed", StatusActive, 400, "").OK)
}

func TestAdd_RejectsDuplicate(t *testing.T) {
	s := NewStore()
	require.True(t, s.Add(newOrder("o1")))
	assert.False(t, s.Add(newOrder("o1")))
	assert.Equal(t, 1, s.Len())
}

func TestOpen_ExcludesTerminal(t *testing.T) {
	s := NewStore()
	require.True(t, s.Add(newOrder("open")))
	require.True(t, s.Add(newOrder("done")))
	require.True(t, s.Transition("done", StatusCancelled, 200, "").OK)

	open := s.Open()
	require.Len(t, open, 1)
	assert.Equal(t, "open", open[0].ID)
}

func TestRestore_RoundTrip(t *testing.T) {
	s := NewStore()
	require.True(t, s.Add(newOrder("o1")))
	require.True(t, s.Transition("o1", StatusActive, 200, "").OK)

	restored := NewStore()
	restored.Restore(s.All())
	o, ok := restored.Get("o1")
	require.True(t, ok)
	assert.Equal(t, StatusActive, o.Status)
	assert.True(t, restored.Transition("o1", StatusShipped, 300, "").OK,
		"state machine continues after restore")
}
