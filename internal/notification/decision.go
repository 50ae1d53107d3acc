package notification

import "hr-backoffice/internal/approval"

// Recipient names who gets told about a transition. Resolution to a
// concrete email address happens at dispatch time, not here.
type Recipient string

const (
	RecipientManagementHOD Recipient = "MANAGEMENT_HOD"
	RecipientOwner         Recipient = "OWNER"
)

type Template string

const (
	TemplateAuthorizationRequested Template = "AUTHORIZATION_REQUESTED"
	TemplateApproved               Template = "APPROVED"
	TemplateRejected               Template = "REJECTED"
)

type Decision struct {
	Recipient Recipient
	Template  Template
}

// Decide maps a committed status transition to the notification owed for
// it, or nil when none is. It is pure so the approval flows stay testable
// without any mail transport. A no-op transition (from == to) never
// notifies, which keeps the CEO escalation email to exactly one send.
func Decide(from, to approval.Status) *Decision {
	if from == to {
		return nil
	}

	switch to {
	case approval.StatusPendingAuthorization:
		return &Decision{
			Recipient: RecipientManagementHOD,
			Template:  TemplateAuthorizationRequested,
		}
	case approval.StatusApproved:
		return &Decision{
			Recipient: RecipientOwner,
			Template:  TemplateApproved,
		}
	case approval.StatusRejected:
		return &Decision{
			Recipient: RecipientOwner,
			Template:  TemplateRejected,
		}
	}

	return nil
}
