package lifecycle

import "github.com/angelop-1602/rec-review-api/schema"

// Outcome is the reviewer-pool disposition derived from the accepted
// decision collection.
type Outcome string

const (
	// OutcomePending means not every assigned reviewer has voted yet.
	OutcomePending Outcome = "pending"
	// OutcomeEligible means every assigned reviewer voted approve; the
	// protocol is ready for the chairperson's final decision.
	OutcomeEligible Outcome = "eligible"
	// OutcomeRevise means at least one reviewer asked for revision or
	// rejection.
	OutcomeRevise Outcome = "revise"
)

// Aggregate derives the composite reviewer outcome for a protocol. Only
// active decisions from the protocol's current review cycle, authored by a
// currently assigned reviewer, count; everything else is audit history. The
// result depends on the set of verdicts, never on submission order.
func Aggregate(p *schema.Protocol, decisions []schema.Decision) Outcome {
	votes := make(map[string]schema.Verdict)
	for _, d := range decisions {
		if d.Collection != schema.CollectionAccepted || !d.Active || d.Cycle != p.ReviewCycle {
			continue
		}
		if !p.IsAssigned(d.AuthorID) {
			continue
		}
		votes[d.AuthorID] = d.Verdict
	}

	for _, v := range votes {
		if v == schema.VerdictRevise || v == schema.VerdictReject {
			return OutcomeRevise
		}
	}

	if len(p.AssignedReviewers) == 0 {
		return OutcomePending
	}
	for _, id := range p.AssignedReviewers {
		if votes[id] != schema.VerdictApprove {
			return OutcomePending
		}
	}
	return OutcomeEligible
}

// FinalStatus maps a chairperson verdict from the approved collection onto
// the status it drives the protocol into. The chairperson's decision is the
// only one permitted to reach approved or rejected.
func FinalStatus(verdict schema.Verdict) schema.ProtocolStatus {
	switch verdict {
	case schema.VerdictApprove:
		return schema.StatusApproved
	case schema.VerdictReject:
		return schema.StatusRejected
	case schema.VerdictExempt:
		return schema.StatusExempted
	case schema.VerdictRevise:
		return schema.StatusNeedsRevision
	}
	return ""
}

// ReviewerInducedStatus maps a reviewer verdict from the accepted collection
// onto the status move it triggers, if any. Approvals trigger nothing on
// their own: eligibility is derived by Aggregate, never stored.
func ReviewerInducedStatus(verdict schema.Verdict) schema.ProtocolStatus {
	if verdict == schema.VerdictRevise || verdict == schema.VerdictReject {
		return schema.StatusNeedsRevision
	}
	return ""
}
