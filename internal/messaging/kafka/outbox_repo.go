package kafka

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Delivery states of an approval notification row. A row is written as
// pending in the same transaction as the decision it announces, moves to
// sent once the broker accepted it, and to failed between publish
// attempts. After maxPublishAttempts it is parked as abandoned and left
// for manual resend.
const (
	OutboxStatusPending   = "pending"
	OutboxStatusSent      = "sent"
	OutboxStatusFailed    = "failed"
	OutboxStatusAbandoned = "abandoned"
)

const maxPublishAttempts = 12

// OutboxEvent is one undelivered approval notification. AggregateType
// and AggregateID name the request whose transition produced it, so the
// broker partitions all events of one request together and a stuck row
// can be traced back to its loan, fine, or reward.
type OutboxEvent struct {
	ID            string
	RequestID     string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	RetryCount    int
	NextRetryAt   sql.NullTime
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock

type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type outboxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

// WithTx binds Create to the decision's transaction. The notification
// row must commit or roll back together with the status change; that is
// what makes "exactly one event per transition" hold.
func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx}
}

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}

	const query = `
INSERT INTO outbox_events
	(id, request_id, aggregate_type, aggregate_id, event_type, topic, payload, status)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8)
`
	args := []any{
		event.ID, event.RequestID, event.AggregateType,
		event.AggregateID, event.EventType, event.Topic, event.Payload, event.Status,
	}

	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, query, args...)
		return err
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ListPending returns rows due for a publish attempt, oldest first, so
// a request's authorization email never overtakes its approval email.
func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	const query = `
SELECT
	id::text,
	aggregate_type,
	aggregate_id::text,
	event_type,
	topic,
	payload,
	status,
	retry_count,
	next_retry_at
FROM outbox_events
WHERE status IN ($1, $2)
	AND retry_count < $3
	AND (next_retry_at IS NULL OR next_retry_at <= NOW())
ORDER BY created_at ASC
LIMIT $4
`
	rows, err := r.db.QueryContext(ctx, query,
		OutboxStatusPending, OutboxStatusFailed, maxPublishAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]OutboxEvent, 0, limit)
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(
			&e.ID,
			&e.AggregateType,
			&e.AggregateID,
			&e.EventType,
			&e.Topic,
			&e.Payload,
			&e.Status,
			&e.RetryCount,
			&e.NextRetryAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	const query = `
UPDATE outbox_events
SET status = $2, processed_at = NOW(), error_message = NULL, updated_at = NOW()
WHERE id = $1
`
	_, err := r.db.ExecContext(ctx, query, id, OutboxStatusSent)
	return err
}

// MarkFailed backs off exponentially, 30s doubling up to 16 minutes,
// and parks the row as abandoned once the attempt budget is spent.
// Notification delivery is best effort; a row that keeps failing must
// not keep a worker slot busy forever.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	const query = `
UPDATE outbox_events
SET
	status = CASE WHEN retry_count + 1 >= $4 THEN $5 ELSE $2 END,
	retry_count = retry_count + 1,
	error_message = LEFT($3, 500),
	next_retry_at = NOW() + (INTERVAL '30 seconds' * LEAST(POWER(2, retry_count), 32)),
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.db.ExecContext(ctx, query,
		id, OutboxStatusFailed, reason, maxPublishAttempts, OutboxStatusAbandoned)
	return err
}

// ValidateOutboxEvent rejects rows that the notification consumer could
// not act on. Only the three request kinds produce outbox traffic.
func ValidateOutboxEvent(event OutboxEvent) error {
	if event.ID == "" {
		return errors.New("outbox id is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	if event.AggregateID == "" {
		return errors.New("outbox aggregate id is required")
	}
	switch event.AggregateType {
	case "LOAN", "FINE", "REWARD":
	default:
		return fmt.Errorf("unknown request kind: %s", event.AggregateType)
	}
	switch event.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed, OutboxStatusAbandoned:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", event.Status)
	}
}
