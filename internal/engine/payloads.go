package engine

import (
	"github.com/Luis85/flowti-sub000/internal/task"
)

// Event payload shapes. Each event.Kind carries exactly one of these;
// consumers assert after switching on the kind.

// PhaseChange accompanies event.PhaseChanged.
type PhaseChange struct {
	From Phase `json:"from"`
	To   Phase `json:"to"`
}

// MessageActionRequest is the payload of event.MessageAction, published
// by the presentation boundary.
type MessageActionRequest struct {
	MessageID string `json:"message_id"`
	Action    string `json:"action"` // read, spam, delete, archive, collect
}

// OrderActionRequest is the payload of event.OrderAction.
type OrderActionRequest struct {
	OrderID string `json:"order_id"`
	Action  string `json:"action"` // process, ship, close, cancel
}

// PaymentDue is the trigger payload of a scheduled payment timer.
type PaymentDue struct {
	OrderID string `json:"order_id"`
}

// PaymentResult accompanies event.PaymentCollected / PaymentFailed.
type PaymentResult struct {
	OrderID string  `json:"order_id"`
	Amount  float64 `json:"amount"`
	Reason  string  `json:"reason,omitempty"`
}

// TaskResolution accompanies event.TaskResolved, published for every
// resolution including failures so observers react uniformly.
type TaskResolution struct {
	TaskID  string       `json:"task_id"`
	Outcome task.Outcome `json:"outcome"`
	Rewards task.Rewards `json:"rewards"`
}

// ActionRejected accompanies event.ActionRejected: a user intent that
// referenced an unknown id or an illegal transition.
type ActionRejected struct {
	Target string `json:"target"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// StageFault accompanies event.StageError.
type StageFault struct {
	Stage string `json:"stage"`
	Err   string `json:"err"`
}

// TickInfo accompanies event.TickSnapshot: the clock plus references
// to the stores, for read-only consumption at the boundary.
type TickInfo struct {
	Clock Clock    `json:"clock"`
	Ctx   *Context `json:"-"`
}
