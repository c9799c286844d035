package schema

import "time"

const (
	ReviewerCollection = "reviewers"
)

type ReviewerRole string

const (
	RoleProponent   ReviewerRole = "proponent"
	RoleReviewer    ReviewerRole = "reviewer"
	RoleChairperson ReviewerRole = "chairperson"
	// RoleSystem marks transitions not driven by a human actor, such as the
	// deadline sweep into the expired status.
	RoleSystem ReviewerRole = "system"
)

func (r ReviewerRole) Valid() bool {
	switch r {
	case RoleProponent, RoleReviewer, RoleChairperson, RoleSystem:
		return true
	}
	return false
}

// Reviewer is a person eligible to author decisions. At most one active
// reviewer carries the chairperson role at a time; this is enforced with a
// partial unique index.
type Reviewer struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Role      ReviewerRole `json:"role"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
}
