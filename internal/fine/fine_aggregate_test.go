package fine

import (
	"testing"

	"hr-backoffice/internal/approval"

	"github.com/stretchr/testify/assert"
)

func entriesWith(statuses ...approval.Status) []FineEntry {
	entries := make([]FineEntry, len(statuses))
	for i, s := range statuses {
		entries[i].Status = s
	}
	return entries
}

func TestRecompute_Rules(t *testing.T) {
	cases := []struct {
		name     string
		statuses []approval.Status
		want     approval.Status
	}{
		{"single approved", []approval.Status{approval.StatusApproved}, approval.StatusApproved},
		{"all approved", []approval.Status{approval.StatusApproved, approval.StatusApproved}, approval.StatusApproved},
		{"single pending", []approval.Status{approval.StatusPending}, approval.StatusPending},
		{"any pending dominates", []approval.Status{approval.StatusPendingAuthorization, approval.StatusPending}, approval.StatusPending},
		{"resolved with escalation", []approval.Status{approval.StatusPendingAuthorization, approval.StatusRejected}, approval.StatusPendingAuthorization},
		{"escalation plus approved", []approval.Status{approval.StatusApproved, approval.StatusPendingAuthorization}, approval.StatusPendingAuthorization},
		{"all rejected falls back", []approval.Status{approval.StatusRejected, approval.StatusRejected}, approval.StatusPending},
		{"mixed approved rejected falls back", []approval.Status{approval.StatusApproved, approval.StatusRejected}, approval.StatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Recompute(entriesWith(tc.statuses...)))
		})
	}
}

func TestRecompute_Empty(t *testing.T) {
	assert.Equal(t, approval.StatusPending, Recompute(nil))
}

// referenceFold restates the three rules independently so the
// exhaustive test below does not just mirror the implementation.
func referenceFold(statuses []approval.Status) approval.Status {
	all := true
	for _, s := range statuses {
		if s != approval.StatusApproved {
			all = false
		}
	}
	if all {
		return approval.StatusApproved
	}
	for _, s := range statuses {
		if s == approval.StatusPending {
			return approval.StatusPending
		}
	}
	for _, s := range statuses {
		if s == approval.StatusPendingAuthorization {
			return approval.StatusPendingAuthorization
		}
	}
	return approval.StatusPending
}

func TestRecompute_ExhaustiveUpToFiveEntries(t *testing.T) {
	statuses := []approval.Status{
		approval.StatusPending,
		approval.StatusPendingAuthorization,
		approval.StatusApproved,
		approval.StatusRejected,
	}

	var combos func(n int, acc []approval.Status)
	combos = func(n int, acc []approval.Status) {
		if n == 0 {
			assert.Equal(t, referenceFold(acc), Recompute(entriesWith(acc...)), "combination %v", acc)
			return
		}
		for _, s := range statuses {
			combos(n-1, append(acc, s))
		}
	}

	for n := 1; n <= 5; n++ {
		combos(n, nil)
	}
}
