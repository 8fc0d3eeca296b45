package timer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Luis85/flowti-sub000/internal/event"
)

func trig() Trigger {
	return Trigger{Kind: event.PaymentDue, Payload: json.RawMessage(`{"order_id":"o1"}`)}
}

func TestAdd_FiresOnceAtExpiry(t *testing.T) {
	s := NewStore()
	id := s.Add(0, 1000, trig(), Options{})

	assert.Empty(t, s.PollExpired(999), "not due yet")

	fired := s.PollExpired(1000)
	require.Len(t, fired, 1)
	assert.Equal(t, id, fired[0].ID)
	assert.Equal(t, event.PaymentDue, fired[0].Trigger.Kind)

	assert.Empty(t, s.PollExpired(5000), "one-shot is gone after firing")
	assert.Equal(t, 0, s.Len())
}

func TestRepeating_FiresExactlyMaxTimes(t *testing.T) {
	s := NewStore()
	s.Add(0, 100, trig(), Options{Every: 100, MaxRepeat: 3})

	total := 0
	for now := int64(100); now <= 1000; now += 100 {
		total += len(s.PollExpired(now))
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, 0, s.Len())
}

func TestRepeating_UnboundedKeepsRescheduling(t *testing.T) {
	s := NewStore()
	s.Add(0, 50, trig(), Options{Every: 50})

	total := 0
	for now := int64(50); now <= 500; now += 50 {
		total += len(s.PollExpired(now))
	}
	assert.Equal(t, 10, total)
	assert.Equal(t, 1, s.Len(), "unbounded timer stays scheduled")
}

func TestPoll_CatchesUpLateOneShot(t *testing.T) {
	s := NewStore()
	s.Add(0, 100, trig(), Options{})
	fired := s.PollExpired(10_000)
	assert.Len(t, fired, 1, "a long tick still fires the timer once")
}

func TestDuplicateIDOverwrites(t *testing.T) {
	s := NewStore()
	s.Add(0, 100, trig(), Options{ID: "pay"})
	s.Add(0, 500, trig(), Options{ID: "pay"})

	assert.Equal(t, 1, s.Len())
	assert.Empty(t, s.PollExpired(100), "first schedule was replaced")
	assert.Len(t, s.PollExpired(500), 1)
}

func TestRemove(t *testing.T) {
	s := NewStore()
	id := s.Add(0, 100, trig(), Options{})
	assert.True(t, s.Remove(id))
	assert.False(t, s.Remove(id), "second remove reports missing")
	assert.Empty(t, s.PollExpired(1000))
}

func TestPollOrder_Deterministic(t *testing.T) {
	s := NewStore()
	s.Add(0, 200, trig(), Options{ID: "b"})
	s.Add(0, 100, trig(), Options{ID: "a"})
	s.Add(0, 200, trig(), Options{ID: "c"})

	fired := s.PollExpired(300)
	require.Len(t, fired, 3)
	assert.Equal(t, "a", fired[0].ID, "earlier expiry first")
	assert.Equal(t, "b", fired[1].ID, "equal expiry ordered by insertion")
	assert.Equal(t, "c", fired[2].ID)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewStore()
	s.Add(0, 100, trig(), Options{ID: "x", Every: 100, MaxRepeat: 2})
	s.Add(0, 300, trig(), Options{})

	all := s.All()
	require.Len(t, all, 2)

	restored := NewStore()
	restored.Restore(all, s.NextID())
	assert.Equal(t, 2, restored.Len())
	fired := restored.PollExpired(100)
	require.Len(t, fired, 1)
	assert.Equal(t, "x", fired[0].ID)
}

func TestSnapshot_PayloadSurvivesJSONPass(t *testing.T) {
	s := NewStore()
	s.Add(0, 100, trig(), Options{ID: "pay"})

	// The persistence layer round-trips timers through JSON; the trigger
	// payload must come back byte-comparable, not as a decoded map.
	raw, err := json.Marshal(s.All())
	require.NoError(t, err)
	var list []Timer
	require.NoError(t, json.Unmarshal(raw, &list))

	restored := NewStore()
	restored.Restore(list, s.NextID())
	fired := restored.PollExpired(100)
	require.Len(t, fired, 1)
	assert.JSONEq(t, `{"order_id":"o1"}`, string(fired[0].Trigger.Payload))
}
