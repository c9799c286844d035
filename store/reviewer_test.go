package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/angelop-1602/rec-review-api/schema"
)

type ReviewerTestSuite struct {
	suite.Suite
	connURI      string
	testDBName   string
	mongoClient  *mongo.Client
	testDatabase *mongo.Database
	store        ReviewStore
}

func NewReviewerTestSuite(connURI, dbName string) *ReviewerTestSuite {
	return &ReviewerTestSuite{
		connURI:    connURI,
		testDBName: dbName,
	}
}

func (s *ReviewerTestSuite) SetupSuite() {
	if s.connURI == "" || s.testDBName == "" {
		s.T().Fatal("invalid test suite configuration")
	}

	opts := options.Client().ApplyURI(s.connURI)
	mongoClient, err := mongo.NewClient(opts)
	if nil != err {
		s.T().Fatalf("create mongo client with error: %s", err)
	}

	if err = mongoClient.Connect(context.Background()); nil != err {
		s.T().Fatalf("connect mongo database with error: %s", err.Error())
	}

	s.mongoClient = mongoClient
	s.testDatabase = mongoClient.Database(s.testDBName)

	if err := s.CleanMongoDB(); err != nil {
		s.T().Fatal(err)
	}

	schema.NewMongoDBIndexer(s.connURI, s.testDBName).IndexAll()
	s.store = NewMongoStore(mongoClient, s.testDBName)
}

func (s *ReviewerTestSuite) CleanMongoDB() error {
	return s.testDatabase.Drop(context.Background())
}

func (s *ReviewerTestSuite) TestChairpersonFailsSoft() {
	// no chairperson configured yet: the lookup returns the placeholder
	// label instead of an error
	s.Equal("Chairperson to be assigned", s.store.CurrentChairpersonName("en"))

	_, err := s.store.CreateReviewer(schema.Reviewer{
		ID:   "chair-1",
		Name: "Dr. Reyes",
		Role: schema.RoleChairperson,
	})
	s.NoError(err)

	s.Equal("Dr. Reyes", s.store.CurrentChairpersonName("en"))

	s.NoError(s.store.DeactivateReviewer("chair-1"))
	s.Equal("Chairperson to be assigned", s.store.CurrentChairpersonName("en"))
}

func (s *ReviewerTestSuite) TestCreateReviewer() {
	reviewer, err := s.store.CreateReviewer(schema.Reviewer{
		ID:   "rev-1",
		Name: "Dr. Santos",
		Role: schema.RoleReviewer,
	})
	s.NoError(err)
	s.True(reviewer.IsActive)

	_, err = s.store.CreateReviewer(schema.Reviewer{
		ID:   "rev-1",
		Name: "Duplicate",
		Role: schema.RoleReviewer,
	})
	s.Equal(ErrReviewerTaken, err)

	stored, err := s.store.GetReviewer("rev-1")
	s.NoError(err)
	s.Equal("Dr. Santos", stored.Name)

	_, err = s.store.GetReviewer("missing")
	s.Equal(ErrReviewerNotFound, err)
}

func (s *ReviewerTestSuite) TestCreateReviewerValidation() {
	_, err := s.store.CreateReviewer(schema.Reviewer{Role: schema.RoleProponent})
	validation, ok := err.(*ValidationError)
	s.True(ok)
	s.ElementsMatch([]string{"id", "name", "role"}, validation.Fields)
}

func TestReviewerTestSuite(t *testing.T) {
	suite.Run(t, NewReviewerTestSuite("mongodb://127.0.0.1:27017/?compressors=disabled", "test-reviewer"))
}
