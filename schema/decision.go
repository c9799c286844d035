package schema

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DecisionCollection tags which decision set a record belongs to. The tag is
// also the name of the mongo collection the record is stored in.
type DecisionCollection string

const (
	// CollectionAccepted holds the reviewer-pool decisions.
	CollectionAccepted DecisionCollection = "accepted"
	// CollectionApproved holds the chairperson's final decisions.
	CollectionApproved DecisionCollection = "approved"
)

func (c DecisionCollection) Valid() bool {
	return c == CollectionAccepted || c == CollectionApproved
}

type Verdict string

const (
	VerdictApprove Verdict = "approve"
	VerdictRevise  Verdict = "revise"
	VerdictReject  Verdict = "reject"
	VerdictExempt  Verdict = "exempt"
)

func (v Verdict) Valid() bool {
	switch v {
	case VerdictApprove, VerdictRevise, VerdictReject, VerdictExempt:
		return true
	}
	return false
}

// Decision is one participant's verdict on a protocol. Records are immutable:
// a newer decision from the same author deactivates the prior one, and the
// prior record stays behind for audit.
type Decision struct {
	ID         primitive.ObjectID `json:"id"`
	ProtocolID primitive.ObjectID `json:"protocol_id"`
	AuthorID   string             `json:"author_id"`
	AuthorRole ReviewerRole       `json:"author_role"`
	Collection DecisionCollection `json:"collection"`
	Verdict    Verdict            `json:"verdict"`
	Comment    string             `json:"comment,omitempty"`
	Cycle      int                `json:"cycle"`
	Active     bool               `json:"active"`
	CreatedAt  time.Time          `json:"created_at"`
}
