package approval

import (
	approvalerrors "hr-backoffice/internal/approval/errors"
	"hr-backoffice/internal/hierarchy"
)

// Transition computes the next status for one approval target: a whole
// loan or reward, or a single employee entry inside a fine. It is the
// only code allowed to produce a new status value.
//
// Approval is a two-stage protocol. The direct manager moves PENDING to
// PENDING_AUTHORIZATION; the CEO (or a system administrator) finalizes.
// When the CEO is also the target's direct manager, a single approval
// lands directly on APPROVED, skipping the redundant self-authorization.
//
// Rejection is deliberately asymmetric: any eligible actor may reject
// from either pending state in one step.
func Transition(current Status, action Action, cls hierarchy.Classification) (Status, error) {
	if !current.Valid() {
		return current, approvalerrors.ErrUnknownStatus
	}
	if current.Terminal() {
		return current, approvalerrors.ErrTerminalState
	}
	if !cls.Eligible() {
		return current, approvalerrors.ErrNotEligible
	}

	switch action {
	case ActionReject:
		return StatusRejected, nil

	case ActionApprove:
		return approve(current, cls)

	default:
		return current, approvalerrors.ErrUnknownAction
	}
}

func approve(current Status, cls hierarchy.Classification) (Status, error) {
	switch current {
	case StatusPending:
		if cls.Role == hierarchy.RoleSystemAdmin {
			return StatusApproved, nil
		}
		if cls.CEO && cls.DirectManager {
			// Fast track: the CEO approving their own report.
			return StatusApproved, nil
		}
		// A bare CEO advancing someone else's report still goes through
		// the intermediate stage; policy under review, kept for parity
		// with the direct-manager path.
		return StatusPendingAuthorization, nil

	case StatusPendingAuthorization:
		switch cls.Role {
		case hierarchy.RoleSystemAdmin, hierarchy.RoleCEO:
			return StatusApproved, nil
		default:
			return current, approvalerrors.ErrAlreadyEscalated
		}
	}

	return current, approvalerrors.ErrUnknownStatus
}

// RecordsApprover reports whether a transition into next must stamp
// approved_by / approved_at. Intermediate escalation does not.
func RecordsApprover(next Status) bool {
	return next == StatusApproved || next == StatusRejected
}
