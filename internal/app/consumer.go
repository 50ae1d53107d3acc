package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hr-backoffice/internal/attachment"
	"hr-backoffice/internal/config"
	"hr-backoffice/internal/employee"
	"hr-backoffice/internal/events"
	"hr-backoffice/internal/messaging/kafka/consumer"
	"hr-backoffice/internal/shared/connection"
	"hr-backoffice/internal/shared/mailer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer reads approval notification events and delivers the emails
// they describe until interrupted.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	employeeRepo := employee.NewRepository(gormDB)
	mail := mailer.New(cfg)

	attachments := attachment.NewNoopStore()
	if cfg.S3Endpoint != "" {
		attachments, err = attachment.NewStore(cfg)
		if err != nil {
			return err
		}
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.ApprovalNotificationTopic,
		GroupID:        "hr-backoffice-approval-notifications",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeApprovalNotifications(ctx, reader, employeeRepo, attachments, mail, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
