package service_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/docreview/docreview/internal/domain/review"
	"github.com/docreview/docreview/internal/service"
)

func finding(kind review.Kind, priority review.Priority, title string) review.Finding {
	return review.Finding{
		ID:       title + "-id",
		Reviewer: kind,
		Priority: priority,
		Title:    title,
		Category: "general",
	}
}

func outcomesWith(findings ...review.Finding) map[review.Kind]*review.Outcome {
	outcomes := make(map[review.Kind]*review.Outcome)
	for _, f := range findings {
		out, ok := outcomes[f.Reviewer]
		if !ok {
			out = &review.Outcome{Reviewer: f.Reviewer, Status: review.StatusCompleted}
			outcomes[f.Reviewer] = out
		}
		out.Findings = append(out.Findings, f)
	}
	return outcomes
}

func TestValidateCleanOutcomes(t *testing.T) {
	adj := service.NewAdjudicator(10)

	v := adj.Validate(outcomesWith(
		finding(review.KindSecurity, review.PriorityCritical, "Plain text passwords"),
		finding(review.KindOperations, review.PriorityHigh, "No monitoring"),
	))

	if !v.Valid {
		t.Fatal("expected valid outcome")
	}
	if len(v.GapFindings) != 0 {
		t.Fatalf("critical security finding present, expected no gap injection, got %d", len(v.GapFindings))
	}
	if math.Abs(v.QualityScore-0.8) > 1e-9 {
		t.Fatalf("expected base quality 0.8, got %v", v.QualityScore)
	}
	if len(v.Recommendations) != 1 || v.Recommendations[0] != "Analysis completed with no inconsistencies" {
		t.Fatalf("unexpected recommendations: %v", v.Recommendations)
	}
}

func TestValidateDuplicateTitles(t *testing.T) {
	adj := service.NewAdjudicator(10)

	v := adj.Validate(outcomesWith(
		finding(review.KindSecurity, review.PriorityCritical, "Same title"),
		finding(review.KindArchitecture, review.PriorityHigh, "Same title"),
	))

	if v.Valid {
		t.Fatal("duplicate titles should invalidate the outcome")
	}
	// One duplicate: 0.8 - 0.1.
	if math.Abs(v.QualityScore-0.7) > 1e-9 {
		t.Fatalf("expected quality 0.7, got %v", v.QualityScore)
	}
}

func TestValidateInjectsSecurityGap(t *testing.T) {
	adj := service.NewAdjudicator(10)

	// Critical finding exists, but not from the security reviewer.
	v := adj.Validate(outcomesWith(
		finding(review.KindRequirements, review.PriorityCritical, "Missing acceptance criteria"),
	))

	if len(v.GapFindings) != 1 {
		t.Fatalf("expected 1 injected gap finding, got %d", len(v.GapFindings))
	}
	gap := v.GapFindings[0]
	if gap.Reviewer != review.KindSecurity || gap.Priority != review.PriorityInfo {
		t.Fatalf("unexpected gap attribution: %s/%s", gap.Reviewer, gap.Priority)
	}
	// Gap injection alone keeps the outcome valid.
	if !v.Valid {
		t.Fatal("gap injection must not invalidate the outcome")
	}
	if math.Abs(v.QualityScore-0.75) > 1e-9 {
		t.Fatalf("expected quality 0.75, got %v", v.QualityScore)
	}
}

func TestQualityScoreClamped(t *testing.T) {
	adj := service.NewAdjudicator(10)

	// 50 findings sharing one title produce 49 logical errors, driving
	// the raw score far below zero.
	var findings []review.Finding
	for range 50 {
		findings = append(findings, finding(review.KindRequirements, review.PriorityLow, "Repeated"))
	}

	v := adj.Validate(outcomesWith(findings...))
	if v.QualityScore != 0 {
		t.Fatalf("expected score clamped to 0, got %v", v.QualityScore)
	}
}

func TestQualityScoreDetailBonus(t *testing.T) {
	adj := service.NewAdjudicator(10)

	var findings []review.Finding
	for i := range 11 {
		findings = append(findings, finding(review.KindSecurity, review.PriorityCritical, fmt.Sprintf("Issue %d", i)))
	}

	v := adj.Validate(outcomesWith(findings...))
	// 0.8 + 0.1 detail bonus, no penalties.
	if math.Abs(v.QualityScore-0.9) > 1e-9 {
		t.Fatalf("expected quality 0.9, got %v", v.QualityScore)
	}
}

func TestConflictRules(t *testing.T) {
	rule := func(byCategory map[string][]review.Finding) []string {
		if len(byCategory["general"]) > 1 {
			return []string{"reviewers disagree on general posture"}
		}
		return nil
	}
	adj := service.NewAdjudicator(10, rule)

	v := adj.Validate(outcomesWith(
		finding(review.KindSecurity, review.PriorityCritical, "A"),
		finding(review.KindOperations, review.PriorityHigh, "B"),
	))

	if v.Valid {
		t.Fatal("conflicts should invalidate the outcome")
	}
	if len(v.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(v.Conflicts))
	}
}
