package store

import "github.com/angelop-1602/rec-review-api/schema"

// Validation happens before any persistence. Every failing field of a write
// is collected into a single ValidationError so a caller sees the complete
// list at once.

func validateProtocol(p *schema.Protocol) error {
	var fields []string
	if p.Title == "" {
		fields = append(fields, "title")
	}
	if p.SubmittedBy == "" {
		fields = append(fields, "submitted_by")
	}
	if !p.Status.Valid() {
		fields = append(fields, "status")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateDecisionParams(params RecordDecisionParams) error {
	var fields []string
	if params.ProtocolID.IsZero() {
		fields = append(fields, "protocol_id")
	}
	if params.AuthorID == "" {
		fields = append(fields, "author_id")
	}
	if !params.AuthorRole.Valid() {
		fields = append(fields, "author_role")
	}
	if !params.Collection.Valid() {
		fields = append(fields, "collection")
	}
	if !params.Verdict.Valid() {
		fields = append(fields, "verdict")
	}
	// the exempt verdict belongs to the chairperson's collection only
	if params.Verdict == schema.VerdictExempt && params.Collection == schema.CollectionAccepted {
		fields = append(fields, "verdict")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: dedupe(fields)}
	}
	return nil
}

func validateReviewer(r *schema.Reviewer) error {
	var fields []string
	if r.ID == "" {
		fields = append(fields, "id")
	}
	if r.Name == "" {
		fields = append(fields, "name")
	}
	if r.Role != schema.RoleReviewer && r.Role != schema.RoleChairperson {
		fields = append(fields, "role")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateAssessment(a *schema.Assessment) error {
	var fields []string
	if a.ProtocolID.IsZero() {
		fields = append(fields, "protocol_id")
	}
	if a.AuthorID == "" {
		fields = append(fields, "author_id")
	}
	if len(a.Scores) == 0 {
		fields = append(fields, "scores")
	}
	for _, s := range a.Scores {
		if s.Criterion == "" {
			fields = append(fields, "scores.criterion")
			break
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func dedupe(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
