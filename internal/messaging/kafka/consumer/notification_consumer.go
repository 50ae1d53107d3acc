package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hr-backoffice/internal/attachment"
	"hr-backoffice/internal/employee"
	"hr-backoffice/internal/events"
	"hr-backoffice/internal/notification"
	"hr-backoffice/internal/shared/mailer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeApprovalNotifications delivers approval emails. Delivery is
// at-most-once by design: every fetched message is committed whether or
// not the send succeeded, and failures are logged with enough context
// for a manual resend. A broken email must never resurrect or block a
// committed transition.
func ConsumeApprovalNotifications(
	ctx context.Context,
	reader *kafkago.Reader,
	employees employee.Repository,
	attachments attachment.Store,
	mail mailer.Mailer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.approval_notifications")
	log.Info("approval notification consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("approval notification consumer stopped")
				return
			}
			log.Error("fetch approval notification message failed", zap.Error(err))
			continue
		}

		var event events.ApprovalNotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode approval notification event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := deliver(ctx, event, employees, attachments, mail); err != nil {
			log.Error("deliver approval notification failed",
				zap.String("request_kind", event.RequestKind),
				zap.String("request_id", event.RequestID),
				zap.String("entry_employee_id", event.EntryEmployeeID),
				zap.String("recipient", event.Recipient),
				zap.Error(err),
			)
		} else {
			log.Info("approval notification delivered",
				zap.String("request_kind", event.RequestKind),
				zap.String("request_id", event.RequestID),
				zap.String("template", event.Template),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit approval notification message failed", zap.Error(err))
		}
	}
}

func deliver(
	ctx context.Context,
	event events.ApprovalNotificationEvent,
	employees employee.Repository,
	attachments attachment.Store,
	mail mailer.Mailer,
) error {
	to, err := resolveRecipient(ctx, event, employees)
	if err != nil {
		return err
	}

	subject, body := renderTemplate(event)

	if event.AttachmentKey != "" && attachments != nil {
		link, err := attachments.SignedURL(ctx, event.AttachmentKey, 24*time.Hour)
		if err == nil {
			body += "\n\nDocument: " + link
		}
		// A missing attachment link degrades the email, it does not
		// block it.
	}

	return mail.Send(ctx, to, subject, body)
}

func resolveRecipient(
	ctx context.Context,
	event events.ApprovalNotificationEvent,
	employees employee.Repository,
) (string, error) {
	switch notification.Recipient(event.Recipient) {
	case notification.RecipientManagementHOD:
		hod, err := employees.FindManagementHOD(ctx)
		if err != nil {
			return "", fmt.Errorf("resolve management HOD: %w", err)
		}
		return hod.Email, nil

	case notification.RecipientOwner:
		ownerID := event.OwnerEmployeeID
		if event.EntryEmployeeID != "" {
			ownerID = event.EntryEmployeeID
		}
		owner, err := employees.FindByID(ctx, ownerID)
		if err != nil {
			return "", fmt.Errorf("resolve owner %s: %w", ownerID, err)
		}
		return owner.Email, nil
	}

	return "", fmt.Errorf("unknown recipient %q", event.Recipient)
}

func renderTemplate(event events.ApprovalNotificationEvent) (subject, body string) {
	kind := event.RequestKind
	ref := event.Reference
	if ref == "" {
		ref = event.RequestID
	}

	switch notification.Template(event.Template) {
	case notification.TemplateAuthorizationRequested:
		subject = fmt.Sprintf("[%s %s] Authorization required", kind, ref)
		body = fmt.Sprintf(
			"The direct manager has approved %s request %s.\nYour authorization is required to finalize it.",
			kind, ref,
		)
	case notification.TemplateApproved:
		subject = fmt.Sprintf("[%s %s] Approved", kind, ref)
		body = fmt.Sprintf("Your %s request %s has been approved.", kind, ref)
	case notification.TemplateRejected:
		subject = fmt.Sprintf("[%s %s] Rejected", kind, ref)
		body = fmt.Sprintf("Your %s request %s has been rejected.", kind, ref)
		if event.Remarks != "" {
			body += "\nRemarks: " + event.Remarks
		}
	default:
		subject = fmt.Sprintf("[%s %s] Status update", kind, ref)
		body = fmt.Sprintf("%s request %s moved to status %s.", kind, ref, event.ToStatus)
	}

	return subject, body
}
