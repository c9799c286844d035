package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/angelop-1602/rec-review-api/schema"
)

func reviewProtocol(cycle int, reviewers ...string) *schema.Protocol {
	return &schema.Protocol{
		ID:                primitive.NewObjectID(),
		Status:            schema.StatusUnderReview,
		AssignedReviewers: reviewers,
		ReviewCycle:       cycle,
	}
}

func acceptedDecision(author string, verdict schema.Verdict, cycle int, active bool) schema.Decision {
	return schema.Decision{
		AuthorID:   author,
		AuthorRole: schema.RoleReviewer,
		Collection: schema.CollectionAccepted,
		Verdict:    verdict,
		Cycle:      cycle,
		Active:     active,
	}
}

func TestAggregateUnanimousApproval(t *testing.T) {
	p := reviewProtocol(0, "r1", "r2")
	decisions := []schema.Decision{
		acceptedDecision("r1", schema.VerdictApprove, 0, true),
		acceptedDecision("r2", schema.VerdictApprove, 0, true),
	}
	assert.Equal(t, OutcomeEligible, Aggregate(p, decisions))
}

func TestAggregatePendingUntilEveryReviewerVotes(t *testing.T) {
	p := reviewProtocol(0, "r1", "r2", "r3")
	decisions := []schema.Decision{
		acceptedDecision("r1", schema.VerdictApprove, 0, true),
		acceptedDecision("r2", schema.VerdictApprove, 0, true),
	}
	assert.Equal(t, OutcomePending, Aggregate(p, decisions))
}

func TestAggregateAnyReviseWins(t *testing.T) {
	p := reviewProtocol(0, "r1", "r2", "r3")

	// a single revise decides the outcome even before the pool completes
	decisions := []schema.Decision{
		acceptedDecision("r1", schema.VerdictRevise, 0, true),
	}
	assert.Equal(t, OutcomeRevise, Aggregate(p, decisions))

	decisions = append(decisions,
		acceptedDecision("r2", schema.VerdictApprove, 0, true),
		acceptedDecision("r3", schema.VerdictApprove, 0, true),
	)
	assert.Equal(t, OutcomeRevise, Aggregate(p, decisions))
}

func TestAggregateRejectBehavesLikeRevise(t *testing.T) {
	p := reviewProtocol(0, "r1", "r2")
	decisions := []schema.Decision{
		acceptedDecision("r1", schema.VerdictApprove, 0, true),
		acceptedDecision("r2", schema.VerdictReject, 0, true),
	}
	assert.Equal(t, OutcomeRevise, Aggregate(p, decisions))
}

// the outcome for a fixed set of verdicts must not depend on submission order
func TestAggregateIsOrderIndependent(t *testing.T) {
	p := reviewProtocol(0, "r1", "r2", "r3")
	decisions := []schema.Decision{
		acceptedDecision("r1", schema.VerdictApprove, 0, true),
		acceptedDecision("r2", schema.VerdictRevise, 0, true),
		acceptedDecision("r3", schema.VerdictApprove, 0, true),
	}

	expected := Aggregate(p, decisions)
	permutations := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	for _, perm := range permutations {
		shuffled := make([]schema.Decision, len(decisions))
		for i, j := range perm {
			shuffled[i] = decisions[j]
		}
		assert.Equal(t, expected, Aggregate(p, shuffled))
	}
}

func TestAggregateIgnoresPriorCycles(t *testing.T) {
	p := reviewProtocol(1, "r1", "r2")
	decisions := []schema.Decision{
		// cycle 0 decisions are history after a resubmission
		acceptedDecision("r1", schema.VerdictRevise, 0, true),
		acceptedDecision("r2", schema.VerdictApprove, 0, true),
		acceptedDecision("r1", schema.VerdictApprove, 1, true),
	}
	assert.Equal(t, OutcomePending, Aggregate(p, decisions))

	decisions = append(decisions, acceptedDecision("r2", schema.VerdictApprove, 1, true))
	assert.Equal(t, OutcomeEligible, Aggregate(p, decisions))
}

func TestAggregateIgnoresInactiveAndUnassigned(t *testing.T) {
	p := reviewProtocol(0, "r1", "r2")
	decisions := []schema.Decision{
		// superseded audit record
		acceptedDecision("r1", schema.VerdictRevise, 0, false),
		acceptedDecision("r1", schema.VerdictApprove, 0, true),
		// author no longer in the pool
		acceptedDecision("r9", schema.VerdictReject, 0, true),
		acceptedDecision("r2", schema.VerdictApprove, 0, true),
	}
	assert.Equal(t, OutcomeEligible, Aggregate(p, decisions))
}

func TestAggregateEmptyPoolIsPending(t *testing.T) {
	p := reviewProtocol(0)
	assert.Equal(t, OutcomePending, Aggregate(p, nil))
}

func TestFinalStatus(t *testing.T) {
	assert.Equal(t, schema.StatusApproved, FinalStatus(schema.VerdictApprove))
	assert.Equal(t, schema.StatusRejected, FinalStatus(schema.VerdictReject))
	assert.Equal(t, schema.StatusExempted, FinalStatus(schema.VerdictExempt))
	assert.Equal(t, schema.StatusNeedsRevision, FinalStatus(schema.VerdictRevise))
}

func TestReviewerInducedStatus(t *testing.T) {
	assert.Equal(t, schema.StatusNeedsRevision, ReviewerInducedStatus(schema.VerdictRevise))
	assert.Equal(t, schema.StatusNeedsRevision, ReviewerInducedStatus(schema.VerdictReject))
	assert.Equal(t, schema.ProtocolStatus(""), ReviewerInducedStatus(schema.VerdictApprove))
}
