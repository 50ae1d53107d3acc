package fine

import "hr-backoffice/internal/approval"

// Recompute folds the entry statuses into the parent status:
//
//  1. every entry APPROVED            -> APPROVED
//  2. no entry PENDING, at least one
//     PENDING_AUTHORIZATION           -> PENDING_AUTHORIZATION
//  3. anything else                   -> PENDING
//
// Rule 3 covers the mixed approved/rejected outcome too: a fine whose
// entries split between APPROVED and REJECTED folds back to PENDING.
// That matches the historical behavior this system inherited; change it
// only together with the payroll deduction job that reads the parent
// status.
func Recompute(entries []FineEntry) approval.Status {
	if len(entries) == 0 {
		return approval.StatusPending
	}

	allApproved := true
	anyPending := false
	anyPendingAuthorization := false

	for _, e := range entries {
		if e.Status != approval.StatusApproved {
			allApproved = false
		}
		switch e.Status {
		case approval.StatusPending:
			anyPending = true
		case approval.StatusPendingAuthorization:
			anyPendingAuthorization = true
		}
	}

	if allApproved {
		return approval.StatusApproved
	}
	if !anyPending && anyPendingAuthorization {
		return approval.StatusPendingAuthorization
	}
	return approval.StatusPending
}
