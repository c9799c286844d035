package store

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/angelop-1602/rec-review-api/lifecycle"
	"github.com/angelop-1602/rec-review-api/schema"
)

type Decision interface {
	RecordDecision(params RecordDecisionParams) (*schema.Decision, error)
	ListDecisions(protocolID primitive.ObjectID, collection schema.DecisionCollection, activeOnly bool) ([]schema.Decision, error)
}

type RecordDecisionParams struct {
	ProtocolID primitive.ObjectID
	AuthorID   string
	AuthorRole schema.ReviewerRole
	Collection schema.DecisionCollection
	Verdict    schema.Verdict
	Comment    string
}

// RecordDecision appends a new decision, deactivates the author's prior
// active decision in the same collection, and applies the status move the
// verdict induces. The decision write and the status write commit in one
// transaction: either both are visible to subsequent reads or neither is.
func (m *mongoDB) RecordDecision(params RecordDecisionParams) (*schema.Decision, error) {
	if err := validateDecisionParams(params); err != nil {
		return nil, err
	}

	protocol, err := m.GetProtocol(params.ProtocolID)
	if err != nil {
		return nil, err
	}

	if protocol.Status != schema.StatusUnderReview && protocol.Status != schema.StatusResubmitted {
		return nil, ErrDecisionNotAllowed
	}

	switch params.Collection {
	case schema.CollectionAccepted:
		if params.AuthorRole != schema.RoleReviewer || !protocol.IsAssigned(params.AuthorID) {
			return nil, ErrUnauthorizedAuthor
		}
	case schema.CollectionApproved:
		if params.AuthorRole != schema.RoleChairperson {
			return nil, ErrUnauthorizedAuthor
		}
	}

	induced := inducedStatus(params)
	if induced != "" {
		// the verdict would drive a status move; refuse the whole batch when
		// the move is illegal from the current status
		if err := lifecycle.Check(protocol.Status, induced, params.AuthorRole); err != nil {
			return nil, err
		}
	}

	decision := schema.Decision{
		ProtocolID: params.ProtocolID,
		AuthorID:   params.AuthorID,
		AuthorRole: params.AuthorRole,
		Collection: params.Collection,
		Verdict:    params.Verdict,
		Comment:    params.Comment,
		Cycle:      protocol.ReviewCycle,
		Active:     true,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	session, err := m.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		db := m.client.Database(m.database)
		decisions := db.Collection(string(params.Collection))

		// a newer decision supersedes, never mutates, the prior one
		if _, err := decisions.UpdateMany(sc,
			bson.M{
				"protocol_id": params.ProtocolID,
				"author_id":   params.AuthorID,
				"active":      true,
			},
			bson.M{"$set": bson.M{"active": false}},
		); err != nil {
			return nil, err
		}

		result, err := decisions.InsertOne(sc, decisionFromDomain(decision))
		if err != nil {
			return nil, err
		}
		decision.ID = result.InsertedID.(primitive.ObjectID)

		update := bson.M{"last_modified_at": time.Now().UTC().Unix()}
		if induced != "" {
			update["status"] = string(induced)
		}

		submissions := db.Collection(schema.SubmissionCollection)
		r, err := submissions.UpdateOne(sc,
			bson.M{"_id": params.ProtocolID, "status": string(protocol.Status)},
			bson.M{"$set": update},
		)
		if err != nil {
			return nil, err
		}
		if r.MatchedCount == 0 {
			return nil, ErrProtocolNotUpdated
		}

		return nil, nil
	})
	if err != nil {
		log.WithFields(log.Fields{
			"prefix":      mongoLogPrefix,
			"protocol ID": params.ProtocolID.Hex(),
			"collection":  params.Collection,
			"error":       err,
		}).Error("record decision")
		return nil, err
	}

	return &decision, nil
}

func inducedStatus(params RecordDecisionParams) schema.ProtocolStatus {
	if params.Collection == schema.CollectionApproved {
		return lifecycle.FinalStatus(params.Verdict)
	}
	return lifecycle.ReviewerInducedStatus(params.Verdict)
}

// ListDecisions returns a protocol's decisions in one collection, ordered by
// creation time ascending. With activeOnly false the superseded audit records
// are included.
func (m *mongoDB) ListDecisions(protocolID primitive.ObjectID, collection schema.DecisionCollection, activeOnly bool) ([]schema.Decision, error) {
	if !collection.Valid() {
		return nil, &ValidationError{Fields: []string{"collection"}}
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := bson.M{"protocol_id": protocolID}
	if activeOnly {
		query["active"] = true
	}

	c := m.client.Database(m.database).Collection(string(collection))
	cursor, err := c.Find(ctx, query, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	decisions := []schema.Decision{}
	for cursor.Next(ctx) {
		var doc decisionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		decisions = append(decisions, decisionToDomain(doc, collection))
	}

	return decisions, cursor.Err()
}
