package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelop-1602/rec-review-api/schema"
)

func TestLegalTransitions(t *testing.T) {
	cases := []struct {
		current schema.ProtocolStatus
		next    schema.ProtocolStatus
		role    schema.ReviewerRole
	}{
		{schema.StatusPendingUpload, schema.StatusSubmitted, schema.RoleProponent},
		{schema.StatusSubmitted, schema.StatusUnderReview, schema.RoleChairperson},
		{schema.StatusUnderReview, schema.StatusNeedsRevision, schema.RoleReviewer},
		{schema.StatusUnderReview, schema.StatusNeedsRevision, schema.RoleChairperson},
		{schema.StatusUnderReview, schema.StatusApproved, schema.RoleChairperson},
		{schema.StatusUnderReview, schema.StatusRejected, schema.RoleChairperson},
		{schema.StatusUnderReview, schema.StatusExempted, schema.RoleChairperson},
		{schema.StatusNeedsRevision, schema.StatusResubmitted, schema.RoleProponent},
		{schema.StatusResubmitted, schema.StatusUnderReview, schema.RoleChairperson},
		{schema.StatusResubmitted, schema.StatusUnderReview, schema.RoleSystem},
		{schema.StatusPendingUpload, schema.StatusExpired, schema.RoleSystem},
		{schema.StatusUnderReview, schema.StatusExpired, schema.RoleSystem},
		{schema.StatusApproved, schema.StatusArchived, schema.RoleChairperson},
		{schema.StatusExpired, schema.StatusArchived, schema.RoleChairperson},
	}

	for _, tc := range cases {
		assert.True(t, CanTransition(tc.current, tc.next, tc.role),
			"%s -> %s by %s should be legal", tc.current, tc.next, tc.role)
		assert.NoError(t, Check(tc.current, tc.next, tc.role))
	}
}

func TestIllegalTransitions(t *testing.T) {
	cases := []struct {
		current schema.ProtocolStatus
		next    schema.ProtocolStatus
		role    schema.ReviewerRole
	}{
		// wrong role
		{schema.StatusPendingUpload, schema.StatusSubmitted, schema.RoleReviewer},
		{schema.StatusUnderReview, schema.StatusApproved, schema.RoleReviewer},
		{schema.StatusUnderReview, schema.StatusApproved, schema.RoleProponent},
		{schema.StatusNeedsRevision, schema.StatusResubmitted, schema.RoleChairperson},
		{schema.StatusUnderReview, schema.StatusExpired, schema.RoleChairperson},
		{schema.StatusApproved, schema.StatusArchived, schema.RoleProponent},
		// pair not in the table
		{schema.StatusPendingUpload, schema.StatusUnderReview, schema.RoleChairperson},
		{schema.StatusSubmitted, schema.StatusApproved, schema.RoleChairperson},
		{schema.StatusApproved, schema.StatusUnderReview, schema.RoleChairperson},
		{schema.StatusResubmitted, schema.StatusApproved, schema.RoleChairperson},
		{schema.StatusExpired, schema.StatusUnderReview, schema.RoleChairperson},
	}

	for _, tc := range cases {
		assert.False(t, CanTransition(tc.current, tc.next, tc.role),
			"%s -> %s by %s should be illegal", tc.current, tc.next, tc.role)

		err := Check(tc.current, tc.next, tc.role)
		assert.Error(t, err)

		invalid, ok := err.(*InvalidTransitionError)
		assert.True(t, ok)
		assert.Equal(t, tc.current, invalid.From)
		assert.Equal(t, tc.next, invalid.Next)
		assert.Equal(t, tc.role, invalid.Role)
	}
}

func TestArchivedIsAbsorbing(t *testing.T) {
	for _, next := range schema.AllProtocolStatuses {
		for _, role := range []schema.ReviewerRole{
			schema.RoleProponent, schema.RoleReviewer, schema.RoleChairperson, schema.RoleSystem,
		} {
			assert.False(t, CanTransition(schema.StatusArchived, next, role))
		}
	}
}

func TestTerminalStatusesReachArchivedOnly(t *testing.T) {
	for _, current := range []schema.ProtocolStatus{
		schema.StatusApproved, schema.StatusRejected, schema.StatusExempted, schema.StatusExpired,
	} {
		for _, next := range schema.AllProtocolStatuses {
			legal := CanTransition(current, next, schema.RoleChairperson)
			assert.Equal(t, next == schema.StatusArchived, legal,
				"%s -> %s", current, next)
		}
	}
}
