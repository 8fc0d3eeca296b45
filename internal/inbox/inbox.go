// Package inbox stores inbound messages and their action handlers.
// Messages are created only by the generator stage; every action is
// idempotent (setting an already-set timestamp fails without effect).
package inbox

import (
	"sort"

	"github.com/Luis85/flowti-sub000/internal/catalog"
)

// Message is one inbound item. Timestamps are simulated milliseconds;
// nil means the action has not happened.
type Message struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Subject    string             `json:"subject"`
	Priority   int                `json:"priority"`
	Author     string             `json:"author"`
	CreatedAt  int64              `json:"created_at"`
	Body       string             `json:"body"`
	Actions    []string           `json:"actions"`
	Tags       []string           `json:"tags"`
	LineItems  []catalog.LineItem `json:"line_items,omitempty"`
	ReadAt     *int64             `json:"read_at,omitempty"`
	SpamAt     *int64             `json:"spam_at,omitempty"`
	DeletedAt  *int64             `json:"deleted_at,omitempty"`
	ArchivedAt *int64             `json:"archived_at,omitempty"`
}

// Store holds messages up to a cap. Not safe for concurrent use.
type Store struct {
	messages map[string]*Message
	order    []string
	cap      int
}

// NewStore creates an inbox with the given capacity (0 = unbounded).
func NewStore(capacity int) *Store {
	return &Store{messages: make(map[string]*Message), cap: capacity}
}

// SetCap updates the capacity between ticks.
func (s *Store) SetCap(capacity int) {
	s.cap = capacity
}

// Full reports whether the store refuses new messages. Soft-deleted
// messages still occupy a slot until purged.
func (s *Store) Full() bool {
	return s.cap > 0 && len(s.order) >= s.cap
}

// Len reports the number of stored messages.
func (s *Store) Len() int {
	return len(s.order)
}

// Add inserts a message. Duplicate ids and a full store are rejected
// with false; both are expected conditions, not errors.
func (s *Store) Add(m Message) bool {
	if _, exists := s.messages[m.ID]; exists {
		return false
	}
	if s.Full() {
		return false
	}
	s.messages[m.ID] = &m
	s.order = append(s.order, m.ID)
	return true
}

// Get returns a copy of the message with the given id.
func (s *Store) Get(id string) (Message, bool) {
	m, ok := s.messages[id]
	if !ok {
		return Message{}, false
	}
	return *m, true
}

// All returns messages in arrival order.
func (s *Store) All() []Message {
	out := make([]Message, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.messages[id])
	}
	return out
}

// Unread returns messages with no read timestamp, newest-priority first.
func (s *Store) Unread() []Message {
	var out []Message
	for _, id := range s.order {
		m := s.messages[id]
		if m.ReadAt == nil && m.DeletedAt == nil && m.SpamAt == nil {
			out = append(out, *m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// stamp sets *field to now if unset. Returns false when already set or
// the message is unknown.
func (s *Store) stamp(id string, now int64, pick func(*Message) **int64) bool {
	m, ok := s.messages[id]
	if !ok {
		return false
	}
	field := pick(m)
	if *field != nil {
		return false
	}
	*field = &now
	return true
}

// MarkRead stamps read_at. Idempotent.
func (s *Store) MarkRead(id string, now int64) bool {
	return s.stamp(id, now, func(m *Message) **int64 { return &m.ReadAt })
}

// MarkSpam stamps spam_at. Idempotent.
func (s *Store) MarkSpam(id string, now int64) bool {
	return s.stamp(id, now, func(m *Message) **int64 { return &m.SpamAt })
}

// Delete soft-deletes by stamping deleted_at. Idempotent; the record
// remains for audit until purged.
func (s *Store) Delete(id string, now int64) bool {
	return s.stamp(id, now, func(m *Message) **int64 { return &m.DeletedAt })
}

// Archive stamps archived_at. Idempotent.
func (s *Store) Archive(id string, now int64) bool {
	return s.stamp(id, now, func(m *Message) **int64 { return &m.ArchivedAt })
}

// Purge removes soft-deleted messages and returns how many went away.
func (s *Store) Purge() int {
	kept := s.order[:0]
	removed := 0
	for _, id := range s.order {
		if s.messages[id].DeletedAt != nil {
			delete(s.messages, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed
}

// Restore replaces store contents from a snapshot.
func (s *Store) Restore(msgs []Message) {
	s.messages = make(map[string]*Message, len(msgs))
	s.order = s.order[:0]
	for i := range msgs {
		m := msgs[i]
		if _, dup := s.messages[m.ID]; dup {
			continue
		}
		s.messages[m.ID] = &m
		s.order = append(s.order, m.ID)
	}
}
