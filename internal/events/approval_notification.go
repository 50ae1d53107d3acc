package events

import "time"

const ApprovalNotificationTopic = "hr.approval.notification.v1"

// ApprovalNotificationEvent is written to the outbox in the same
// transaction that commits a status transition, so exactly one event
// exists per transition. Delivery downstream is best effort.
type ApprovalNotificationEvent struct {
	EventType       string    `json:"event_type"`
	RequestKind     string    `json:"request_kind"` // LOAN, FINE, REWARD
	RequestID       string    `json:"request_id"`
	Reference       string    `json:"reference"`
	EntryEmployeeID string    `json:"entry_employee_id,omitempty"` // fine entries only
	OwnerEmployeeID string    `json:"owner_employee_id"`
	Recipient       string    `json:"recipient"`
	Template        string    `json:"template"`
	FromStatus      string    `json:"from_status"`
	ToStatus        string    `json:"to_status"`
	Remarks         string    `json:"remarks,omitempty"`
	AttachmentKey   string    `json:"attachment_key,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
