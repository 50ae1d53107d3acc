package producer

import (
	"context"
	"time"

	"hr-backoffice/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const publishBatchSize = 50

// ProcessOutboxEvents drains committed approval notifications toward the
// broker. Publishing is decoupled from the HTTP request that produced the
// row: a slow or down broker delays emails, it never delays decisions.
func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer *kafkago.Writer,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	log := logger.Named("kafka.producer.worker")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info("approval notification publisher started",
		zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("approval notification publisher stopped")
			return
		case <-ticker.C:
			if err := drainOutbox(ctx, repo, writer, log); err != nil {
				log.Error("drain outbox failed", zap.Error(err))
			}
		}
	}
}

func drainOutbox(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer *kafkago.Writer,
	logger *zap.Logger,
) error {
	events, err := repo.ListPending(ctx, publishBatchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	var published, failed int
	for _, event := range events {
		if err := publishEvent(ctx, writer, event); err != nil {
			failed++
			logger.Error("publish approval notification failed",
				zap.String("outbox_id", event.ID),
				zap.String("request_kind", event.AggregateType),
				zap.String("request_id", event.AggregateID),
				zap.Int("attempt", event.RetryCount+1),
				zap.Error(err),
			)
			_ = repo.MarkFailed(ctx, event.ID, err.Error())
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			logger.Error("mark outbox sent failed",
				zap.String("outbox_id", event.ID),
				zap.Error(err),
			)
			continue
		}
		published++
	}

	logger.Info("outbox batch drained",
		zap.Int("published", published),
		zap.Int("failed", failed),
	)
	return nil
}
