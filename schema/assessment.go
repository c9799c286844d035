package schema

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AssessmentCollection = "assessments"
)

// AssessmentScore is one scored criterion of a reviewer's structured feedback.
type AssessmentScore struct {
	Criterion string `json:"criterion"`
	Score     int    `json:"score"`
	Remarks   string `json:"remarks,omitempty"`
}

// Assessment is a reviewer's structured scoring of a protocol, distinct from
// a binary decision. A protocol can carry many assessments.
type Assessment struct {
	ID         primitive.ObjectID `json:"id"`
	ProtocolID primitive.ObjectID `json:"protocol_id"`
	AuthorID   string             `json:"author_id"`
	Cycle      int                `json:"cycle"`
	Scores     []AssessmentScore  `json:"scores"`
	Comment    string             `json:"comment,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}
