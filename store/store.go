package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	mongoLogPrefix = "mongo"

	defaultTimeout = 5 * time.Second
)

var (
	ErrProtocolNotFound   = fmt.Errorf("protocol not found")
	ErrReviewerNotFound   = fmt.Errorf("reviewer not found")
	ErrProtocolNotUpdated = fmt.Errorf("protocol not updated")
	ErrReviewerTaken      = fmt.Errorf("reviewer id already registered")

	// ErrDecisionNotAllowed is returned when a decision is recorded against a
	// protocol whose status does not accept decisions.
	ErrDecisionNotAllowed = fmt.Errorf("decision not allowed in current protocol status")

	// ErrUnauthorizedAuthor is returned when the author's role or assignment
	// does not permit writing into the requested decision collection.
	ErrUnauthorizedAuthor = fmt.Errorf("author not permitted for this decision collection")
)

// ValidationError lists every failing field of a rejected write. A write that
// fails validation is never partially applied.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
}

// ReviewStore is the single choke point through which every entity is read,
// validated and written. No caller touches raw collections directly.
type ReviewStore interface {
	Protocol
	Decision
	Reviewer
	Assessment

	Close(ctx context.Context) error
}

type mongoDB struct {
	client   *mongo.Client
	database string
}

// NewMongoStore takes an injected mongo client; the store never reaches for
// ambient global state.
func NewMongoStore(client *mongo.Client, database string) ReviewStore {
	return &mongoDB{
		client:   client,
		database: database,
	}
}

func (m *mongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
