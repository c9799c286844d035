package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/angelop-1602/rec-review-api/schema"
)

type Assessment interface {
	CreateAssessment(assessment schema.Assessment) (*schema.Assessment, error)
	ListAssessments(protocolID primitive.ObjectID) ([]schema.Assessment, error)
}

// CreateAssessment stores a reviewer's structured scoring of a protocol. The
// record is stamped with the protocol's current review cycle.
func (m *mongoDB) CreateAssessment(assessment schema.Assessment) (*schema.Assessment, error) {
	if err := validateAssessment(&assessment); err != nil {
		return nil, err
	}

	protocol, err := m.GetProtocol(assessment.ProtocolID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	assessment.Cycle = protocol.ReviewCycle
	assessment.CreatedAt = time.Now().UTC().Truncate(time.Second)

	c := m.client.Database(m.database).Collection(schema.AssessmentCollection)
	result, err := c.InsertOne(ctx, assessmentFromDomain(assessment))
	if err != nil {
		return nil, err
	}

	assessment.ID = result.InsertedID.(primitive.ObjectID)
	return &assessment, nil
}

func (m *mongoDB) ListAssessments(protocolID primitive.ObjectID) ([]schema.Assessment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.AssessmentCollection)
	cursor, err := c.Find(ctx,
		bson.M{"protocol_id": protocolID},
		options.Find().SetSort(bson.M{"created_at": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	assessments := []schema.Assessment{}
	for cursor.Next(ctx) {
		var doc assessmentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		assessments = append(assessments, assessmentToDomain(doc))
	}

	return assessments, cursor.Err()
}
