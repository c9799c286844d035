package watch

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/angelop-1602/rec-review-api/schema"
	"github.com/angelop-1602/rec-review-api/store"
)

// mongoSource backs the hub with mongo change streams on the submissions
// collection. Snapshots go through the store so the wire-to-domain mapping
// stays in one place.
type mongoSource struct {
	client      *mongo.Client
	database    string
	reviewStore store.ReviewStore
}

func NewMongoSource(client *mongo.Client, database string, reviewStore store.ReviewStore) SnapshotSource {
	return &mongoSource{
		client:      client,
		database:    database,
		reviewStore: reviewStore,
	}
}

func (s *mongoSource) Snapshot(ctx context.Context, protocolID primitive.ObjectID) (*schema.Protocol, error) {
	return s.reviewStore.GetProtocol(protocolID)
}

func (s *mongoSource) IsNotFound(err error) bool {
	return err == store.ErrProtocolNotFound
}

func (s *mongoSource) Watch(ctx context.Context, protocolID primitive.ObjectID) (Stream, error) {
	c := s.client.Database(s.database).Collection(schema.SubmissionCollection)

	// the driver resumes transparent retries itself; the pipeline narrows the
	// stream to writes of this one protocol so per-protocol ordering follows
	// the store's write order
	cs, err := c.Watch(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"documentKey._id": protocolID}}},
	})
	if err != nil {
		return nil, err
	}

	return &mongoStream{cs: cs}, nil
}

type mongoStream struct {
	cs *mongo.ChangeStream
}

func (s *mongoStream) Next(ctx context.Context) error {
	if s.cs.Next(ctx) {
		return nil
	}
	if err := s.cs.Err(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *mongoStream) Close(ctx context.Context) error {
	return s.cs.Close(ctx)
}
