package schema

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBIndexer builds the indexes every collection relies on. It is invoked
// once at service start and from test suite setup.
type MongoDBIndexer struct {
	connURI  string
	database string
}

func NewMongoDBIndexer(connURI, database string) *MongoDBIndexer {
	return &MongoDBIndexer{
		connURI:  connURI,
		database: database,
	}
}

func (m *MongoDBIndexer) IndexAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.connURI))
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	db := client.Database(m.database)

	if _, err := db.Collection(SubmissionCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "protocol_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "submitted_by", Value: 1}, {Key: "created_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "assigned_reviewers", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "review_deadline", Value: 1}},
		},
	}); err != nil {
		return err
	}

	// one active decision per (protocol, author) within a decision collection
	for _, collection := range []DecisionCollection{CollectionAccepted, CollectionApproved} {
		if _, err := db.Collection(string(collection)).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys: bson.D{{Key: "protocol_id", Value: 1}, {Key: "author_id", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"active": true}),
			},
			{
				Keys: bson.D{{Key: "protocol_id", Value: 1}, {Key: "created_at", Value: 1}},
			},
		}); err != nil {
			return err
		}
	}

	if _, err := db.Collection(ReviewerCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		// at most one active chairperson
		{
			Keys: bson.D{{Key: "role", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"role":      RoleChairperson,
					"is_active": true,
				}),
		},
	}); err != nil {
		return err
	}

	if _, err := db.Collection(AssessmentCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "protocol_id", Value: 1}, {Key: "created_at", Value: 1}},
	}); err != nil {
		return err
	}

	return nil
}
