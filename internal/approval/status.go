package approval

// Status is the shared approval state for loans, rewards, and individual
// fine entries. PENDING_AUTHORIZATION means the direct manager has
// approved and the record awaits CEO sign-off.
type Status string

const (
	StatusPending              Status = "PENDING"
	StatusPendingAuthorization Status = "PENDING_AUTHORIZATION"
	StatusApproved             Status = "APPROVED"
	StatusRejected             Status = "REJECTED"
)

// Terminal reports whether no further transition may leave the status.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPendingAuthorization, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Action is the request a caller makes against a pending record.
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
)

// ParseAction normalizes an incoming action value; ok is false for
// anything other than the two known actions.
func ParseAction(v string) (Action, bool) {
	switch Action(v) {
	case ActionApprove:
		return ActionApprove, true
	case ActionReject:
		return ActionReject, true
	}
	return "", false
}
