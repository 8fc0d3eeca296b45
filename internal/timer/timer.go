// Package timer schedules deferred triggers keyed by simulated time.
// Timers are the only mechanism for effects that must outlive the
// event bus's single-tick visibility window.
package timer

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Luis85/flowti-sub000/internal/event"
)

// Trigger is the event a timer publishes when it expires. The payload
// is kept as encoded JSON so pending timers survive a snapshot restore
// with their concrete shape intact; consumers decode by Kind.
type Trigger struct {
	Kind    event.Kind      `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Timer is one scheduled trigger, optionally repeating.
type Timer struct {
	ID        string  `json:"id"`
	ExpiresAt int64   `json:"expires_at"` // simulated ms
	Trigger   Trigger `json:"trigger"`
	Every     int64   `json:"every,omitempty"`       // repeat interval in ms, 0 = one-shot
	MaxRepeat int     `json:"max_repeat,omitempty"`  // 0 with Every>0 = unbounded
	Repeats   int     `json:"repeats"`               // fired so far
	Source    string  `json:"source,omitempty"`      // subsystem that created it
	CreatedAt int64   `json:"created_at"`            // simulated ms
	seq       int64   // insertion order, for deterministic polling
}

// Options tunes Add. Zero value is a one-shot auto-id timer.
type Options struct {
	ID        string // caller-supplied id; empty = auto-generated
	Every     int64  // repeat interval in ms
	MaxRepeat int    // total firings when repeating; 0 = unbounded
	Source    string
}

// Store holds pending timers. Not safe for concurrent use.
type Store struct {
	timers  map[string]*Timer
	nextSeq int64
	nextID  int64
}

// NewStore creates an empty timer store.
func NewStore() *Store {
	return &Store{timers: make(map[string]*Timer)}
}

// Add schedules a trigger delayMs simulated milliseconds after nowMs.
// A duplicate id overwrites the prior entry. Returns the timer id.
func (s *Store) Add(nowMs, delayMs int64, trig Trigger, opts Options) string {
	id := opts.ID
	if id == "" {
		s.nextID++
		id = fmt.Sprintf("timer-%d", s.nextID)
	}
	s.nextSeq++
	s.timers[id] = &Timer{
		ID:        id,
		ExpiresAt: nowMs + delayMs,
		Trigger:   trig,
		Every:     opts.Every,
		MaxRepeat: opts.MaxRepeat,
		Source:    opts.Source,
		CreatedAt: nowMs,
		seq:       s.nextSeq,
	}
	return id
}

// Remove cancels a pending timer. Reports whether it existed.
func (s *Store) Remove(id string) bool {
	if _, ok := s.timers[id]; !ok {
		return false
	}
	delete(s.timers, id)
	return true
}

// Get returns a pending timer by id.
func (s *Store) Get(id string) (Timer, bool) {
	t, ok := s.timers[id]
	if !ok {
		return Timer{}, false
	}
	return *t, true
}

// Len reports the number of pending timers.
func (s *Store) Len() int {
	return len(s.timers)
}

// PollExpired returns every timer with ExpiresAt <= nowMs, ordered by
// expiry then insertion. One-shot timers are removed; repeating timers
// are rescheduled until their repeat budget is spent.
func (s *Store) PollExpired(nowMs int64) []Timer {
	var due []*Timer
	for _, t := range s.timers {
		if t.ExpiresAt <= nowMs {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].ExpiresAt != due[j].ExpiresAt {
			return due[i].ExpiresAt < due[j].ExpiresAt
		}
		return due[i].seq < due[j].seq
	})

	fired := make([]Timer, 0, len(due))
	for _, t := range due {
		t.Repeats++
		fired = append(fired, *t)
		if t.Every > 0 && (t.MaxRepeat == 0 || t.Repeats < t.MaxRepeat) {
			t.ExpiresAt += t.Every
		} else {
			delete(s.timers, t.ID)
		}
	}
	return fired
}

// All returns pending timers in insertion order, for snapshotting.
func (s *Store) All() []Timer {
	out := make([]Timer, 0, len(s.timers))
	for _, t := range s.timers {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Restore replaces the store contents from a snapshot, preserving the
// given order as the new insertion order.
func (s *Store) Restore(timers []Timer, nextID int64) {
	s.timers = make(map[string]*Timer, len(timers))
	s.nextSeq = 0
	s.nextID = nextID
	for i := range timers {
		t := timers[i]
		s.nextSeq++
		t.seq = s.nextSeq
		s.timers[t.ID] = &t
	}
}

// NextID returns the auto-id counter, for snapshotting.
func (s *Store) NextID() int64 {
	return s.nextID
}
