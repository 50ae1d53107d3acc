package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"hr-backoffice/internal/approval"
	"hr-backoffice/internal/events"
	"hr-backoffice/internal/messaging/kafka"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		name string
		from approval.Status
		to   approval.Status
		want *Decision
	}{
		{
			"escalation notifies the hod",
			approval.StatusPending, approval.StatusPendingAuthorization,
			&Decision{Recipient: RecipientManagementHOD, Template: TemplateAuthorizationRequested},
		},
		{
			"approval notifies the owner",
			approval.StatusPendingAuthorization, approval.StatusApproved,
			&Decision{Recipient: RecipientOwner, Template: TemplateApproved},
		},
		{
			"fast-track approval notifies the owner",
			approval.StatusPending, approval.StatusApproved,
			&Decision{Recipient: RecipientOwner, Template: TemplateApproved},
		},
		{
			"rejection notifies the owner",
			approval.StatusPending, approval.StatusRejected,
			&Decision{Recipient: RecipientOwner, Template: TemplateRejected},
		},
		{"no-op never notifies", approval.StatusPendingAuthorization, approval.StatusPendingAuthorization, nil},
		{"terminal no-op never notifies", approval.StatusApproved, approval.StatusApproved, nil},
		{"regression to pending never notifies", approval.StatusPendingAuthorization, approval.StatusPending, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.from, tc.to))
		})
	}
}

type fakeOutbox struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error               { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

func TestDispatcher_EnqueueWritesOneEvent(t *testing.T) {
	outbox := &fakeOutbox{}
	d := NewDispatcher()

	tr := Transition{
		Kind:            "LOAN",
		RequestID:       uuid.New().String(),
		Reference:       "LOAN-2026-00001",
		OwnerEmployeeID: uuid.New().String(),
		From:            approval.StatusPending,
		To:              approval.StatusPendingAuthorization,
	}

	err := d.Enqueue(context.Background(), outbox, tr)
	assert.NoError(t, err)
	assert.Len(t, outbox.created, 1)

	row := outbox.created[0]
	assert.Equal(t, events.ApprovalNotificationTopic, row.Topic)
	assert.Equal(t, kafka.OutboxStatusPending, row.Status)
	assert.Equal(t, tr.RequestID, row.AggregateID)

	var event events.ApprovalNotificationEvent
	assert.NoError(t, json.Unmarshal(row.Payload, &event))
	assert.Equal(t, string(RecipientManagementHOD), event.Recipient)
	assert.Equal(t, string(TemplateAuthorizationRequested), event.Template)
	assert.Equal(t, tr.Reference, event.Reference)
}

func TestDispatcher_EnqueueSkipsNoOp(t *testing.T) {
	outbox := &fakeOutbox{}
	d := NewDispatcher()

	err := d.Enqueue(context.Background(), outbox, Transition{
		Kind:      "REWARD",
		RequestID: uuid.New().String(),
		From:      approval.StatusPending,
		To:        approval.StatusPending,
	})
	assert.NoError(t, err)
	assert.Empty(t, outbox.created)
}
