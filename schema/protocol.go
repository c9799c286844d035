package schema

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SubmissionCollection = "submissions"
)

type ProtocolStatus string

const (
	StatusPendingUpload ProtocolStatus = "pending_upload"
	StatusSubmitted     ProtocolStatus = "submitted"
	StatusUnderReview   ProtocolStatus = "under_review"
	StatusNeedsRevision ProtocolStatus = "needs_revision"
	StatusResubmitted   ProtocolStatus = "resubmitted"
	StatusApproved      ProtocolStatus = "approved"
	StatusRejected      ProtocolStatus = "rejected"
	StatusExempted      ProtocolStatus = "exempted"
	StatusExpired       ProtocolStatus = "expired"
	StatusArchived      ProtocolStatus = "archived"
)

// AllProtocolStatuses is the closed status vocabulary. A protocol status
// outside this list never reaches the database.
var AllProtocolStatuses = []ProtocolStatus{
	StatusPendingUpload,
	StatusSubmitted,
	StatusUnderReview,
	StatusNeedsRevision,
	StatusResubmitted,
	StatusApproved,
	StatusRejected,
	StatusExempted,
	StatusExpired,
	StatusArchived,
}

func (s ProtocolStatus) Valid() bool {
	for _, known := range AllProtocolStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether a status ends the review flow. Archived is the
// absorbing state reachable from terminal statuses only.
func (s ProtocolStatus) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusExempted, StatusExpired, StatusArchived:
		return true
	}
	return false
}

// Protocol is the aggregate root of a research-ethics submission. Decisions
// and assessments are owned by it and addressed through its id.
type Protocol struct {
	ID                primitive.ObjectID `json:"id"`
	ProtocolNumber    string             `json:"protocol_number"`
	Title             string             `json:"title"`
	Status            ProtocolStatus     `json:"status"`
	SubmittedBy       string             `json:"submitted_by"`
	AssignedReviewers []string           `json:"assigned_reviewers"`
	DocumentID        string             `json:"document_id"`
	ReviewCycle       int                `json:"review_cycle"`
	ReviewDeadline    time.Time          `json:"review_deadline"`
	CreatedAt         time.Time          `json:"created_at"`
	LastModifiedAt    time.Time          `json:"last_modified_at"`
}

// IsAssigned reports whether the reviewer id belongs to the current pool.
func (p *Protocol) IsAssigned(reviewerID string) bool {
	for _, id := range p.AssignedReviewers {
		if id == reviewerID {
			return true
		}
	}
	return false
}
