package lifecycle

import (
	"fmt"

	"github.com/angelop-1602/rec-review-api/schema"
)

// InvalidTransitionError reports an illegal status move. It carries the
// attempted pair and the actor's role so callers never have to parse the
// message text.
type InvalidTransitionError struct {
	From schema.ProtocolStatus
	Next schema.ProtocolStatus
	Role schema.ReviewerRole
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s by role %s", e.From, e.Next, e.Role)
}

// transitions is the closed table of legal moves. Archived is absorbing: it
// has no outgoing entry. Expired and Archived rows are filled in by init
// since they apply uniformly to non-terminal and terminal statuses.
var transitions = map[schema.ProtocolStatus]map[schema.ProtocolStatus][]schema.ReviewerRole{
	schema.StatusPendingUpload: {
		schema.StatusSubmitted: {schema.RoleProponent},
	},
	schema.StatusSubmitted: {
		schema.StatusUnderReview: {schema.RoleChairperson},
	},
	schema.StatusUnderReview: {
		// needs-revision is the direct consequence of a reviewer verdict,
		// so the reviewer role may drive it alongside the chairperson
		schema.StatusNeedsRevision: {schema.RoleReviewer, schema.RoleChairperson},
		schema.StatusApproved:      {schema.RoleChairperson},
		schema.StatusRejected:      {schema.RoleChairperson},
		schema.StatusExempted:      {schema.RoleChairperson},
	},
	schema.StatusNeedsRevision: {
		schema.StatusResubmitted: {schema.RoleProponent},
	},
	schema.StatusResubmitted: {
		schema.StatusUnderReview: {schema.RoleChairperson, schema.RoleSystem},
	},
}

func init() {
	for _, status := range schema.AllProtocolStatuses {
		if status.Terminal() {
			if status != schema.StatusArchived {
				if transitions[status] == nil {
					transitions[status] = map[schema.ProtocolStatus][]schema.ReviewerRole{}
				}
				transitions[status][schema.StatusArchived] = []schema.ReviewerRole{schema.RoleChairperson}
			}
			continue
		}
		transitions[status][schema.StatusExpired] = []schema.ReviewerRole{schema.RoleSystem}
	}
}

// CanTransition reports whether the actor role may move a protocol from
// current to next.
func CanTransition(current, next schema.ProtocolStatus, role schema.ReviewerRole) bool {
	roles, ok := transitions[current][next]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Check returns nil when the move is legal and an *InvalidTransitionError
// otherwise.
func Check(current, next schema.ProtocolStatus, role schema.ReviewerRole) error {
	if !CanTransition(current, next, role) {
		return &InvalidTransitionError{From: current, Next: next, Role: role}
	}
	return nil
}
