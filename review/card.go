// Package review exposes the single decision-card contract shared by the
// proponent, reviewer and chairperson views. Role is always an explicit
// parameter, never inferred from context, so the same contract is testable
// for all three roles.
package review

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/angelop-1602/rec-review-api/lifecycle"
	"github.com/angelop-1602/rec-review-api/schema"
	"github.com/angelop-1602/rec-review-api/store"
)

// Card is everything a role view renders about one decision collection of a
// protocol.
type Card struct {
	ProtocolID     primitive.ObjectID        `json:"protocol_id"`
	ProtocolNumber string                    `json:"protocol_number"`
	Status         schema.ProtocolStatus     `json:"status"`
	Collection     schema.DecisionCollection `json:"collection"`
	Outcome        lifecycle.Outcome         `json:"outcome"`
	Decisions      []schema.Decision         `json:"decisions"`
	OwnDecision    *schema.Decision          `json:"own_decision,omitempty"`
	CanDecide      bool                      `json:"can_decide"`
}

type CardService struct {
	store store.ReviewStore
}

func NewCardService(reviewStore store.ReviewStore) *CardService {
	return &CardService{store: reviewStore}
}

// Card renders the decision card for one viewer. The reviewer-pool outcome is
// always derived from the accepted collection regardless of which collection
// is being rendered: the chairperson's card shows eligibility next to the
// final-decision slot.
func (s *CardService) Card(protocolID primitive.ObjectID, collection schema.DecisionCollection, viewerID string, viewerRole schema.ReviewerRole) (*Card, error) {
	if !collection.Valid() {
		return nil, &store.ValidationError{Fields: []string{"collection"}}
	}
	if !viewerRole.Valid() {
		return nil, &store.ValidationError{Fields: []string{"viewer_role"}}
	}

	protocol, err := s.store.GetProtocol(protocolID)
	if err != nil {
		return nil, err
	}

	decisions, err := s.store.ListDecisions(protocolID, collection, true)
	if err != nil {
		return nil, err
	}

	accepted := decisions
	if collection != schema.CollectionAccepted {
		if accepted, err = s.store.ListDecisions(protocolID, schema.CollectionAccepted, true); err != nil {
			return nil, err
		}
	}

	card := &Card{
		ProtocolID:     protocol.ID,
		ProtocolNumber: protocol.ProtocolNumber,
		Status:         protocol.Status,
		Collection:     collection,
		Outcome:        lifecycle.Aggregate(protocol, accepted),
		Decisions:      decisions,
		CanDecide:      canDecide(protocol, collection, viewerID, viewerRole),
	}

	for i := range decisions {
		if decisions[i].AuthorID == viewerID {
			card.OwnDecision = &decisions[i]
			break
		}
	}

	return card, nil
}

// Submit enforces the collection's authorization rule and forwards to the
// data access layer, which applies the decision and any induced status move
// atomically.
func (s *CardService) Submit(protocolID primitive.ObjectID, collection schema.DecisionCollection, viewerID string, viewerRole schema.ReviewerRole, verdict schema.Verdict, comment string) (*schema.Decision, error) {
	return s.store.RecordDecision(store.RecordDecisionParams{
		ProtocolID: protocolID,
		AuthorID:   viewerID,
		AuthorRole: viewerRole,
		Collection: collection,
		Verdict:    verdict,
		Comment:    comment,
	})
}

func canDecide(p *schema.Protocol, collection schema.DecisionCollection, viewerID string, viewerRole schema.ReviewerRole) bool {
	if p.Status != schema.StatusUnderReview && p.Status != schema.StatusResubmitted {
		return false
	}
	switch collection {
	case schema.CollectionAccepted:
		return viewerRole == schema.RoleReviewer && p.IsAssigned(viewerID)
	case schema.CollectionApproved:
		// the chairperson's decision is authoritative and independent of
		// reviewer aggregation
		return viewerRole == schema.RoleChairperson
	}
	return false
}
