package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/angelop-1602/rec-review-api/lifecycle"
	"github.com/angelop-1602/rec-review-api/schema"
)

type Protocol interface {
	CreateProtocol(title, submittedBy, documentID string) (*schema.Protocol, error)
	GetProtocol(protocolID primitive.ObjectID) (*schema.Protocol, error)
	ListProtocols(filter ProtocolFilter) ([]schema.Protocol, error)
	TransitionProtocol(protocolID primitive.ObjectID, next schema.ProtocolStatus, actorRole schema.ReviewerRole) (*schema.Protocol, error)
	AssignReviewers(protocolID primitive.ObjectID, reviewerIDs []string, deadline time.Time, actorRole schema.ReviewerRole) (*schema.Protocol, error)
	ExpireOverdueProtocols(now time.Time) (int, error)
}

// ProtocolFilter narrows ListProtocols. Zero values are ignored; results are
// ordered by creation time ascending.
type ProtocolFilter struct {
	SubmittedBy string
	AssignedTo  string
	Status      schema.ProtocolStatus
	Limit       int64
}

// CreateProtocol registers a new submission in the pending-upload status and
// assigns it a protocol number.
func (m *mongoDB) CreateProtocol(title, submittedBy, documentID string) (*schema.Protocol, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Second)
	protocol := &schema.Protocol{
		ProtocolNumber:    "REC-" + uuid.New().String(),
		Title:             title,
		Status:            schema.StatusPendingUpload,
		SubmittedBy:       submittedBy,
		AssignedReviewers: []string{},
		DocumentID:        documentID,
		CreatedAt:         now,
		LastModifiedAt:    now,
	}

	if err := validateProtocol(protocol); err != nil {
		return nil, err
	}

	c := m.client.Database(m.database).Collection(schema.SubmissionCollection)
	result, err := c.InsertOne(ctx, protocolFromDomain(protocol))
	if err != nil {
		log.WithFields(log.Fields{
			"prefix": mongoLogPrefix,
			"error":  err,
		}).Error("insert protocol")
		return nil, err
	}

	protocol.ID = result.InsertedID.(primitive.ObjectID)
	return protocol, nil
}

func (m *mongoDB) GetProtocol(protocolID primitive.ObjectID) (*schema.Protocol, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.SubmissionCollection)

	var doc protocolDoc
	if err := c.FindOne(ctx, bson.M{"_id": protocolID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProtocolNotFound
		}
		return nil, err
	}

	return protocolToDomain(doc), nil
}

func (m *mongoDB) ListProtocols(filter ProtocolFilter) ([]schema.Protocol, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.SubmittedBy != "" {
		query["submitted_by"] = filter.SubmittedBy
	}
	if filter.AssignedTo != "" {
		query["assigned_reviewers"] = filter.AssignedTo
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}

	opts := options.Find().SetSort(bson.M{"created_at": 1})
	if filter.Limit > 0 {
		opts = opts.SetLimit(filter.Limit)
	}

	c := m.client.Database(m.database).Collection(schema.SubmissionCollection)
	cursor, err := c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	protocols := []schema.Protocol{}
	for cursor.Next(ctx) {
		var doc protocolDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		protocols = append(protocols, *protocolToDomain(doc))
	}

	return protocols, cursor.Err()
}

// TransitionProtocol applies a single legal status move. An illegal move
// returns an InvalidTransitionError and performs no write. The write is
// guarded on the current status so a concurrent move cannot be overwritten.
func (m *mongoDB) TransitionProtocol(protocolID primitive.ObjectID, next schema.ProtocolStatus, actorRole schema.ReviewerRole) (*schema.Protocol, error) {
	protocol, err := m.GetProtocol(protocolID)
	if err != nil {
		return nil, err
	}

	if err := lifecycle.Check(protocol.Status, next, actorRole); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	update := bson.M{
		"status":           string(next),
		"last_modified_at": time.Now().UTC().Unix(),
	}
	// a resubmission entering review opens a new cycle; decisions from prior
	// cycles stop counting toward aggregation
	if protocol.Status == schema.StatusResubmitted && next == schema.StatusUnderReview {
		update["review_cycle"] = protocol.ReviewCycle + 1
	}

	c := m.client.Database(m.database).Collection(schema.SubmissionCollection)
	var doc protocolDoc
	err = c.FindOneAndUpdate(ctx,
		bson.M{"_id": protocolID, "status": string(protocol.Status)},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			log.WithFields(log.Fields{
				"prefix":      mongoLogPrefix,
				"protocol ID": protocolID.Hex(),
				"next":        next,
			}).Warn("protocol status moved concurrently")
			return nil, ErrProtocolNotUpdated
		}
		return nil, err
	}

	return protocolToDomain(doc), nil
}

// AssignReviewers replaces the reviewer pool. Only the chairperson mutates
// assignments; assigning on a submitted protocol also moves it under review.
func (m *mongoDB) AssignReviewers(protocolID primitive.ObjectID, reviewerIDs []string, deadline time.Time, actorRole schema.ReviewerRole) (*schema.Protocol, error) {
	if actorRole != schema.RoleChairperson {
		return nil, ErrUnauthorizedAuthor
	}

	protocol, err := m.GetProtocol(protocolID)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"assigned_reviewers": dedupe(reviewerIDs),
		"review_deadline":    deadline.UTC().Unix(),
		"last_modified_at":   time.Now().UTC().Unix(),
	}

	if protocol.Status == schema.StatusSubmitted {
		if err := lifecycle.Check(protocol.Status, schema.StatusUnderReview, actorRole); err != nil {
			return nil, err
		}
		update["status"] = string(schema.StatusUnderReview)
	} else if protocol.Status != schema.StatusUnderReview {
		return nil, &lifecycle.InvalidTransitionError{
			From: protocol.Status,
			Next: schema.StatusUnderReview,
			Role: actorRole,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.SubmissionCollection)
	var doc protocolDoc
	err = c.FindOneAndUpdate(ctx,
		bson.M{"_id": protocolID, "status": string(protocol.Status)},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProtocolNotUpdated
		}
		return nil, err
	}

	return protocolToDomain(doc), nil
}

// ExpireOverdueProtocols moves every non-terminal protocol whose review
// deadline has elapsed into the expired status. It acts as the system role
// and returns the number of protocols expired.
func (m *mongoDB) ExpireOverdueProtocols(now time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	nonTerminal := make([]string, 0, len(schema.AllProtocolStatuses))
	for _, status := range schema.AllProtocolStatuses {
		if !status.Terminal() && lifecycle.CanTransition(status, schema.StatusExpired, schema.RoleSystem) {
			nonTerminal = append(nonTerminal, string(status))
		}
	}

	c := m.client.Database(m.database).Collection(schema.SubmissionCollection)
	result, err := c.UpdateMany(ctx,
		bson.M{
			"status":          bson.M{"$in": nonTerminal},
			"review_deadline": bson.M{"$gt": 0, "$lt": now.UTC().Unix()},
		},
		bson.M{"$set": bson.M{
			"status":           string(schema.StatusExpired),
			"last_modified_at": now.UTC().Unix(),
		}},
	)
	if err != nil {
		log.WithFields(log.Fields{
			"prefix": mongoLogPrefix,
			"error":  err,
		}).Error("expire overdue protocols")
		return 0, err
	}

	return int(result.ModifiedCount), nil
}
