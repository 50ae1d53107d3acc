package notification

import (
	"context"
	"encoding/json"
	"time"

	"hr-backoffice/internal/approval"
	"hr-backoffice/internal/events"
	"hr-backoffice/internal/messaging/kafka"
	"hr-backoffice/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Transition describes one committed status change for dispatch purposes.
type Transition struct {
	Kind            string // LOAN, FINE, REWARD
	RequestID       string
	Reference       string
	EntryEmployeeID string // set for fine entries
	OwnerEmployeeID string
	From            approval.Status
	To              approval.Status
	Remarks         string
	AttachmentKey   string
}

// Dispatcher turns transitions into outbox events. The outbox row is
// written through the caller's transaction, so a notification exists
// exactly when its transition committed: once per transition, and never
// for a no-op.
//
//go:generate mockgen -source=dispatcher.go -destination=mock/dispatcher_mock.go -package=mock
type Dispatcher interface {
	Enqueue(ctx context.Context, outbox kafka.OutboxRepository, t Transition) error
}

type dispatcher struct {
	logger *zap.Logger
}

func NewDispatcher(logger ...*zap.Logger) Dispatcher {
	l := zap.L().Named("notification.dispatcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.dispatcher")
	}
	return &dispatcher{logger: l}
}

func (d *dispatcher) Enqueue(ctx context.Context, outbox kafka.OutboxRepository, t Transition) error {
	decision := Decide(t.From, t.To)
	if decision == nil {
		return nil
	}

	event := events.ApprovalNotificationEvent{
		EventType:       "approval_notification",
		RequestKind:     t.Kind,
		RequestID:       t.RequestID,
		Reference:       t.Reference,
		EntryEmployeeID: t.EntryEmployeeID,
		OwnerEmployeeID: t.OwnerEmployeeID,
		Recipient:       string(decision.Recipient),
		Template:        string(decision.Template),
		FromStatus:      string(t.From),
		ToStatus:        string(t.To),
		Remarks:         t.Remarks,
		AttachmentKey:   t.AttachmentKey,
		OccurredAt:      time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	outboxEvent := kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: t.Kind,
		AggregateID:   t.RequestID,
		EventType:     event.EventType,
		Topic:         events.ApprovalNotificationTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := kafka.ValidateOutboxEvent(outboxEvent); err != nil {
		return err
	}

	if err := outbox.Create(ctx, outboxEvent); err != nil {
		return err
	}

	d.logger.Debug("notification enqueued",
		zap.String("request_kind", t.Kind),
		zap.String("request_id", t.RequestID),
		zap.String("recipient", string(decision.Recipient)),
		zap.String("template", string(decision.Template)),
	)

	return nil
}
