// Package orders implements the sales order lifecycle state machine.
// Transitions are forward-only; illegal requests are rejected with a
// reason and leave the order untouched.
package orders

import (
	"fmt"

	"github.com/Luis85/flowti-sub000/internal/catalog"
)

// Status is the lifecycle state of a sales order.
type Status string

const (
	StatusNew       Status = "new"
	StatusActive    Status = "active"
	StatusShipped   Status = "shipped"
	StatusPaid      Status = "paid"
	StatusClosed    Status = "closed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// legal maps each state to the set of states reachable from it.
// paid, failed, closed and cancelled are terminal.
var legal = map[Status][]Status{
	StatusNew:     {StatusActive, StatusCancelled},
	StatusActive:  {StatusShipped, StatusPaid, StatusFailed, StatusCancelled},
	StatusShipped: {StatusClosed, StatusPaid, StatusFailed, StatusCancelled},
}

// SalesOrder is one customer order. Timestamps are simulated ms; nil
// means the transition has not happened.
type SalesOrder struct {
	ID          string             `json:"id"`
	Customer    string             `json:"customer"`
	LineItems   []catalog.LineItem `json:"line_items"`
	Total       float64            `json:"total"`
	Status      Status             `json:"status"`
	CreatedAt   int64              `json:"created_at"`
	UpdatedAt   int64              `json:"updated_at"`
	ProcessedAt *int64             `json:"processed_at,omitempty"`
	ShippedAt   *int64             `json:"shipped_at,omitempty"`
	PaidAt      *int64             `json:"paid_at,omitempty"`
	ClosedAt    *int64             `json:"closed_at,omitempty"`
	FailedAt    *int64             `json:"failed_at,omitempty"`
	CancelledAt *int64             `json:"cancelled_at,omitempty"`
	FailReason  string             `json:"fail_reason,omitempty"`
}

// Terminal reports whether the order can change no further.
func (o *SalesOrder) Terminal() bool {
	_, ok := legal[o.Status]
	return !ok
}

// Result reports the outcome of a transition request.
type Result struct {
	OK     bool
	Reason string
}

func reject(format string, args ...any) Result {
	return Result{OK: false, Reason: fmt.Sprintf(format, args...)}
}

// Store holds all sales orders. Not safe for concurrent use.
type Store struct {
	orders map[string]*SalesOrder
	order  []string
}

// NewStore creates an empty order store.
func NewStore() *Store {
	return &Store{orders: make(map[string]*SalesOrder)}
}

// Add inserts a new order. Duplicate ids are rejected with false.
func (s *Store) Add(o SalesOrder) bool {
	if _, exists := s.orders[o.ID]; exists {
		return false
	}
	if o.Status == "" {
		o.Status = StatusNew
	}
	o.UpdatedAt = o.CreatedAt
	s.orders[o.ID] = &o
	s.order = append(s.order, o.ID)
	return true
}

// Get returns a copy of the order with the given id.
func (s *Store) Get(id string) (SalesOrder, bool) {
	o, ok := s.orders[id]
	if !ok {
		return SalesOrder{}, false
	}
	return *o, true
}

// All returns orders in creation order.
func (s *Store) All() []SalesOrder {
	out := make([]SalesOrder, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.orders[id])
	}
	return out
}

// Open returns orders that are not yet terminal.
func (s *Store) Open() []SalesOrder {
	var out []SalesOrder
	for _, id := range s.order {
		if o := s.orders[id]; !o.Terminal() {
			out = append(out, *o)
		}
	}
	return out
}

// Len reports the number of stored orders.
func (s *Store) Len() int {
	return len(s.order)
}

// Transition requests a status change. Unknown ids and illegal target
// states are rejected with a reason; the order is left unchanged.
// reason is recorded on the order for failed transitions.
func (s *Store) Transition(id string, to Status, now int64, reason string) Result {
	o, ok := s.orders[id]
	if !ok {
		return reject("order %q not found", id)
	}
	allowed := false
	for _, next := range legal[o.Status] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return reject("illegal transition %s -> %s for order %q", o.Status, to, id)
	}

	o.Status = to
	o.UpdatedAt = now
	switch to {
	case StatusActive:
		o.ProcessedAt = &now
	case StatusShipped:
		o.ShippedAt = &now
	case StatusPaid:
		o.PaidAt = &now
	case StatusClosed:
		o.ClosedAt = &now
	case StatusFailed:
		o.FailedAt = &now
		o.FailReason = reason
	case StatusCancelled:
		o.CancelledAt = &now
	}
	return Result{OK: true}
}

// Restore replaces store contents from a snapshot.
func (s *Store) Restore(list []SalesOrder) {
	s.orders = make(map[string]*SalesOrder, len(list))
	s.order = s.order[:0]
	for i := range list {
		o := list[i]
		if _, dup := s.orders[o.ID]; dup {
			continue
		}
		s.orders[o.ID] = &o
		s.order = append(s.order, o.ID)
	}
}
