package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/angelop-1602/rec-review-api/schema"
)

// The storage representation is never assumed identical to the in-memory
// form: timestamps are canonicalized to unix seconds on the wire and every
// read/write passes through exactly one mapper pair below. A storage schema
// change is an edit to this file only.

type protocolDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	ProtocolNumber    string             `bson:"protocol_number"`
	Title             string             `bson:"title"`
	Status            string             `bson:"status"`
	SubmittedBy       string             `bson:"submitted_by"`
	AssignedReviewers []string           `bson:"assigned_reviewers"`
	DocumentID        string             `bson:"document_id"`
	ReviewCycle       int                `bson:"review_cycle"`
	ReviewDeadline    int64              `bson:"review_deadline"`
	CreatedAt         int64              `bson:"created_at"`
	LastModifiedAt    int64              `bson:"last_modified_at"`
}

func protocolToDomain(doc protocolDoc) *schema.Protocol {
	reviewers := doc.AssignedReviewers
	if reviewers == nil {
		reviewers = []string{}
	}
	return &schema.Protocol{
		ID:                doc.ID,
		ProtocolNumber:    doc.ProtocolNumber,
		Title:             doc.Title,
		Status:            schema.ProtocolStatus(doc.Status),
		SubmittedBy:       doc.SubmittedBy,
		AssignedReviewers: reviewers,
		DocumentID:        doc.DocumentID,
		ReviewCycle:       doc.ReviewCycle,
		ReviewDeadline:    time.Unix(doc.ReviewDeadline, 0).UTC(),
		CreatedAt:         time.Unix(doc.CreatedAt, 0).UTC(),
		LastModifiedAt:    time.Unix(doc.LastModifiedAt, 0).UTC(),
	}
}

func protocolFromDomain(p *schema.Protocol) protocolDoc {
	return protocolDoc{
		ID:                p.ID,
		ProtocolNumber:    p.ProtocolNumber,
		Title:             p.Title,
		Status:            string(p.Status),
		SubmittedBy:       p.SubmittedBy,
		AssignedReviewers: p.AssignedReviewers,
		DocumentID:        p.DocumentID,
		ReviewCycle:       p.ReviewCycle,
		ReviewDeadline:    p.ReviewDeadline.Unix(),
		CreatedAt:         p.CreatedAt.Unix(),
		LastModifiedAt:    p.LastModifiedAt.Unix(),
	}
}

type decisionDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ProtocolID primitive.ObjectID `bson:"protocol_id"`
	AuthorID   string             `bson:"author_id"`
	AuthorRole string             `bson:"author_role"`
	Verdict    string             `bson:"verdict"`
	Comment    string             `bson:"comment,omitempty"`
	Cycle      int                `bson:"cycle"`
	Active     bool               `bson:"active"`
	CreatedAt  int64              `bson:"created_at"`
}

// decisionToDomain restores the collection tag, which is carried by the
// collection the document lives in rather than by a field.
func decisionToDomain(doc decisionDoc, collection schema.DecisionCollection) schema.Decision {
	return schema.Decision{
		ID:         doc.ID,
		ProtocolID: doc.ProtocolID,
		AuthorID:   doc.AuthorID,
		AuthorRole: schema.ReviewerRole(doc.AuthorRole),
		Collection: collection,
		Verdict:    schema.Verdict(doc.Verdict),
		Comment:    doc.Comment,
		Cycle:      doc.Cycle,
		Active:     doc.Active,
		CreatedAt:  time.Unix(doc.CreatedAt, 0).UTC(),
	}
}

func decisionFromDomain(d schema.Decision) decisionDoc {
	return decisionDoc{
		ID:         d.ID,
		ProtocolID: d.ProtocolID,
		AuthorID:   d.AuthorID,
		AuthorRole: string(d.AuthorRole),
		Verdict:    string(d.Verdict),
		Comment:    d.Comment,
		Cycle:      d.Cycle,
		Active:     d.Active,
		CreatedAt:  d.CreatedAt.Unix(),
	}
}

type reviewerDoc struct {
	ID        string `bson:"id"`
	Name      string `bson:"name"`
	Role      string `bson:"role"`
	IsActive  bool   `bson:"is_active"`
	CreatedAt int64  `bson:"created_at"`
}

func reviewerToDomain(doc reviewerDoc) schema.Reviewer {
	return schema.Reviewer{
		ID:        doc.ID,
		Name:      doc.Name,
		Role:      schema.ReviewerRole(doc.Role),
		IsActive:  doc.IsActive,
		CreatedAt: time.Unix(doc.CreatedAt, 0).UTC(),
	}
}

func reviewerFromDomain(r schema.Reviewer) reviewerDoc {
	return reviewerDoc{
		ID:        r.ID,
		Name:      r.Name,
		Role:      string(r.Role),
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt.Unix(),
	}
}

type assessmentScoreDoc struct {
	Criterion string `bson:"criterion"`
	Score     int    `bson:"score"`
	Remarks   string `bson:"remarks,omitempty"`
}

type assessmentDoc struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	ProtocolID primitive.ObjectID   `bson:"protocol_id"`
	AuthorID   string               `bson:"author_id"`
	Cycle      int                  `bson:"cycle"`
	Scores     []assessmentScoreDoc `bson:"scores"`
	Comment    string               `bson:"comment,omitempty"`
	CreatedAt  int64                `bson:"created_at"`
}

func assessmentToDomain(doc assessmentDoc) schema.Assessment {
	scores := make([]schema.AssessmentScore, 0, len(doc.Scores))
	for _, s := range doc.Scores {
		scores = append(scores, schema.AssessmentScore{
			Criterion: s.Criterion,
			Score:     s.Score,
			Remarks:   s.Remarks,
		})
	}
	return schema.Assessment{
		ID:         doc.ID,
		ProtocolID: doc.ProtocolID,
		AuthorID:   doc.AuthorID,
		Cycle:      doc.Cycle,
		Scores:     scores,
		Comment:    doc.Comment,
		CreatedAt:  time.Unix(doc.CreatedAt, 0).UTC(),
	}
}

func assessmentFromDomain(a schema.Assessment) assessmentDoc {
	scores := make([]assessmentScoreDoc, 0, len(a.Scores))
	for _, s := range a.Scores {
		scores = append(scores, assessmentScoreDoc{
			Criterion: s.Criterion,
			Score:     s.Score,
			Remarks:   s.Remarks,
		})
	}
	return assessmentDoc{
		ID:         a.ID,
		ProtocolID: a.ProtocolID,
		AuthorID:   a.AuthorID,
		Cycle:      a.Cycle,
		Scores:     scores,
		Comment:    a.Comment,
		CreatedAt:  a.CreatedAt.Unix(),
	}
}
