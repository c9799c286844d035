package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/angelop-1602/rec-review-api/lifecycle"
	"github.com/angelop-1602/rec-review-api/schema"
)

type ProtocolTestSuite struct {
	suite.Suite
	connURI      string
	testDBName   string
	mongoClient  *mongo.Client
	testDatabase *mongo.Database
}

func NewProtocolTestSuite(connURI, dbName string) *ProtocolTestSuite {
	return &ProtocolTestSuite{
		connURI:    connURI,
		testDBName: dbName,
	}
}

func (s *ProtocolTestSuite) SetupSuite() {
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

	// make sure the test suite is run with a clean environment
	if err := s.CleanMongoDB(); err != nil {
		s.T().Fatal(err)
	}

	schema.NewMongoDBIndexer(s.connURI, s.testDBName).IndexAll()
}

func (s *ProtocolTestSuite) CleanMongoDB() error {
	return s.testDatabase.Drop(context.Background())
}

func (s *ProtocolTestSuite) TestCreateProtocol() {
	store := NewMongoStore(s.mongoClient, s.testDBName)

	protocol, err := store.CreateProtocol("Community Health Survey", "proponentA", "doc-001")
	s.NoError(err)
	s.False(protocol.ID.IsZero())
	s.NotEmpty(protocol.ProtocolNumber)
	s.Equal(schema.StatusPendingUpload, protocol.Status)
	s.Equal("proponentA", protocol.SubmittedBy)
	s.Equal(0, protocol.ReviewCycle)

	stored, err := store.GetProtocol(protocol.ID)
	s.NoError(err)
	s.Equal(protocol.ID, stored.ID)
	s.Equal(schema.StatusPendingUpload, stored.Status)
	s.Equal("Community Health Survey", stored.Title)
}

func (s *ProtocolTestSuite) TestCreateProtocolValidation() {
	store := NewMongoStore(s.mongoClient, s.testDBName)

	_, err := store.CreateProtocol("", "", "")
	s.Error(err)

	validation, ok := err.(*ValidationError)
	s.True(ok)
	// every failing field is listed at once
	s.ElementsMatch([]string{"title", "submitted_by"}, validation.Fields)
}

func (s *ProtocolTestSuite) TestTransitionProtocol() {
	store := NewMongoStore(s.mongoClient, s.testDBName)

	protocol, err := store.CreateProtocol("Transition Flow", "proponentA", "doc-002")
	s.NoError(err)

	moved, err := store.TransitionProtocol(protocol.ID, schema.StatusSubmitted, schema.RoleProponent)
	s.NoError(err)
	s.Equal(schema.StatusSubmitted, moved.Status)
	s.True(moved.LastModifiedAt.After(protocol.LastModifiedAt) || moved.LastModifiedAt.Equal(protocol.LastModifiedAt))
}

func (s *ProtocolTestSuite) TestIllegalTransitionPerformsNoWrite() {
	store := NewMongoStore(s.mongoClient, s.testDBName)

	protocol, err := store.CreateProtocol("Illegal Move", "proponentA", "doc-003")
	s.NoError(err)

	_, err = store.TransitionProtocol(protocol.ID, schema.StatusApproved, schema.RoleChairperson)
	s.Error(err)

	invalid, ok := err.(*lifecycle.InvalidTransitionError)
	s.True(ok)
	s.Equal(schema.StatusPendingUpload, invalid.From)
	s.Equal(schema.StatusApproved, invalid.Next)
	s.Equal(schema.RoleChairperson, invalid.Role)

	stored, err := store.GetProtocol(protocol.ID)
	s.NoError(err)
	s.Equal(schema.StatusPendingUpload, stored.Status)
	s.Equal(protocol.LastModifiedAt, stored.LastModifiedAt)
}

func (s *ProtocolTestSuite) TestAssignReviewersMovesSubmittedUnderReview() {
	store := NewMongoStore(s.mongoClient, s.testDBName)

	protocol, err := store.CreateProtocol("Assignment Flow", "proponentA", "doc-004")
	s.NoError(err)
	_, err = store.TransitionProtocol(protocol.ID, schema.StatusSubmitted, schema.RoleProponent)
	s.NoError(err)

	deadline := time.Now().AddDate(0, 0, 30)
	assigned, err := store.AssignReviewers(protocol.ID, []string{"r1", "r2", "r1"}, deadline, schema.RoleChairperson)
	s.NoError(err)
	s.Equal(schema.StatusUnderReview, assigned.Status)
	// duplicates collapse
	s.Equal([]string{"r1", "r2"}, assigned.AssignedReviewers)

	// only the chairperson mutates assignments
	_, err = store.AssignReviewers(protocol.ID, []string{"r3"}, deadline, schema.RoleReviewer)
	s.Equal(ErrUnauthorizedAuthor, err)
}

func (s *ProtocolTestSuite) TestListProtocolsOrderedByCreation() {
	store := NewMongoStore(s.mongoClient, s.testDBName)

	first, err := store.CreateProtocol("List A", "proponentList", "doc-l1")
	s.NoError(err)
	// creation times carry second resolution
	time.Sleep(time.Second)
	second, err := store.CreateProtocol("List B", "proponentList", "doc-l2")
	s.NoError(err)

	protocols, err := store.ListProtocols(ProtocolFilter{SubmittedBy: "proponentList"})
	s.NoError(err)
	s.Len(protocols, 2)
	s.Equal(first.ID, protocols[0].ID)
	s.Equal(second.ID, protocols[1].ID)
}

func (s *ProtocolTestSuite) TestExpireOverdueProtocols() {
	store := NewMongoStore(s.mongoClient, s.testDBName)

	protocol, err := store.CreateProtocol("Overdue Review", "proponentA", "doc-005")
	s.NoError(err)
	_, err = store.TransitionProtocol(protocol.ID, schema.StatusSubmitted, schema.RoleProponent)
	s.NoError(err)
	_, err = store.AssignReviewers(protocol.ID, []string{"r1"}, time.Now().AddDate(0, 0, -1), schema.RoleChairperson)
	s.NoError(err)

	expired, err := store.ExpireOverdueProtocols(time.Now())
	s.NoError(err)
	s.GreaterOrEqual(expired, 1)

	stored, err := store.GetProtocol(protocol.ID)
	s.NoError(err)
	s.Equal(schema.StatusExpired, stored.Status)

	// terminal protocols are out of the sweeper's reach
	var raw bson.M
	err = s.testDatabase.Collection(schema.SubmissionCollection).
		FindOne(context.Background(), bson.M{"_id": protocol.ID}).Decode(&raw)
	s.NoError(err)
	s.Equal(string(schema.StatusExpired), raw["status"])

	again, err := store.ExpireOverdueProtocols(time.Now())
	s.NoError(err)
	s.Equal(0, again)
}

func (s *ProtocolTestSuite) TestGetProtocolNotFound() {
	store := NewMongoStore(s.mongoClient, s.testDBName)

	_, err := store.GetProtocol(primitive.NewObjectID())
	s.Equal(ErrProtocolNotFound, err)
}

func TestProtocolTestSuite(t *testing.T) {
	suite.Run(t, NewProtocolTestSuite("mongodb://127.0.0.1:27017/?compressors=disabled", "test-protocol"))
}
