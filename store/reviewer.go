package store

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/angelop-1602/rec-review-api/schema"
	"github.com/angelop-1602/rec-review-api/utils"
)

type Reviewer interface {
	CreateReviewer(reviewer schema.Reviewer) (*schema.Reviewer, error)
	GetReviewer(reviewerID string) (*schema.Reviewer, error)
	ListActiveReviewers() ([]schema.Reviewer, error)
	DeactivateReviewer(reviewerID string) error
	CurrentChairpersonName(lang string) string
}

func (m *mongoDB) CreateReviewer(reviewer schema.Reviewer) (*schema.Reviewer, error) {
	if err := validateReviewer(&reviewer); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	reviewer.IsActive = true
	reviewer.CreatedAt = time.Now().UTC().Truncate(time.Second)

	c := m.client.Database(m.database).Collection(schema.ReviewerCollection)
	if _, err := c.InsertOne(ctx, reviewerFromDomain(reviewer)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrReviewerTaken
		}
		return nil, err
	}

	return &reviewer, nil
}

func (m *mongoDB) GetReviewer(reviewerID string) (*schema.Reviewer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.ReviewerCollection)

	var doc reviewerDoc
	if err := c.FindOne(ctx, bson.M{"id": reviewerID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrReviewerNotFound
		}
		return nil, err
	}

	reviewer := reviewerToDomain(doc)
	return &reviewer, nil
}

func (m *mongoDB) ListActiveReviewers() ([]schema.Reviewer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.ReviewerCollection)
	cursor, err := c.Find(ctx,
		bson.M{"is_active": true},
		options.Find().SetSort(bson.M{"created_at": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviewers := []schema.Reviewer{}
	for cursor.Next(ctx) {
		var doc reviewerDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		reviewers = append(reviewers, reviewerToDomain(doc))
	}

	return reviewers, cursor.Err()
}

func (m *mongoDB) DeactivateReviewer(reviewerID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.ReviewerCollection)
	result, err := c.UpdateOne(ctx,
		bson.M{"id": reviewerID},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrReviewerNotFound
	}
	return nil
}

// CurrentChairpersonName returns the display name of the active chairperson.
// When none is configured the lookup fails soft with a localized placeholder
// label instead of an error.
func (m *mongoDB) CurrentChairpersonName(lang string) string {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.ReviewerCollection)

	var doc reviewerDoc
	err := c.FindOne(ctx, bson.M{
		"role":      string(schema.RoleChairperson),
		"is_active": true,
	}).Decode(&doc)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			log.WithFields(log.Fields{
				"prefix": mongoLogPrefix,
				"error":  err,
			}).Error("lookup current chairperson")
		}
		return utils.Localize(lang, "chairperson.unassigned")
	}

	return doc.Name
}
