package service_test

import (
	"strings"
	"testing"

	"github.com/docreview/docreview/internal/domain/review"
	"github.com/docreview/docreview/internal/service"
)

func TestSynthesizeOrdersByPriority(t *testing.T) {
	syn := service.NewSynthesizer()

	outcomes := outcomesWith(
		finding(review.KindRequirements, review.PriorityMedium, "Vague requirement"),
		finding(review.KindSecurity, review.PriorityCritical, "Plain text passwords"),
		finding(review.KindOperations, review.PriorityHigh, "No monitoring"),
	)
	validation := &review.Validation{
		Valid:           true,
		QualityScore:    0.8,
		Recommendations: []string{"Analysis completed with no inconsistencies"},
	}

	result := syn.Synthesize("task-1", outcomes, validation)

	if result.Status != review.StatusCompleted {
		t.Fatalf("expected completed result, got %s", result.Status)
	}
	got := make([]review.Priority, len(result.Findings))
	for i, f := range result.Findings {
		got[i] = f.Priority
	}
	want := []review.Priority{review.PriorityCritical, review.PriorityHigh, review.PriorityMedium}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestSynthesizeKeepsGapFindings(t *testing.T) {
	syn := service.NewSynthesizer()

	outcomes := outcomesWith(
		finding(review.KindRequirements, review.PriorityHigh, "Missing requirements section"),
	)
	validation := &review.Validation{
		Valid:        true,
		QualityScore: 0.75,
		GapFindings: []review.Finding{
			finding(review.KindSecurity, review.PriorityInfo, "Supplementary security audit recommended"),
		},
		Recommendations: []string{"Run an additional pass to cover the detected gaps"},
	}

	result := syn.Synthesize("task-1", outcomes, validation)

	if len(result.Findings) != 2 {
		t.Fatalf("expected 2 findings (1 reviewer + 1 gap), got %d", len(result.Findings))
	}
	last := result.Findings[len(result.Findings)-1]
	if last.Title != "Supplementary security audit recommended" {
		t.Fatalf("gap finding missing or misplaced, last finding: %s", last.Title)
	}
}

func TestSynthesizeReportCountsMatchFindings(t *testing.T) {
	syn := service.NewSynthesizer()

	outcomes := outcomesWith(
		finding(review.KindSecurity, review.PriorityCritical, "A"),
		finding(review.KindSecurity, review.PriorityCritical, "B"),
		finding(review.KindArchitecture, review.PriorityHigh, "C"),
		finding(review.KindOperations, review.PriorityMedium, "D"),
		finding(review.KindRequirements, review.PriorityInfo, "E"),
	)
	validation := &review.Validation{Valid: true, QualityScore: 0.8}

	result := syn.Synthesize("task-1", outcomes, validation)
	sum := result.Report.Summary

	if sum.TotalFindings != len(result.Findings) {
		t.Fatalf("report total %d != findings %d", sum.TotalFindings, len(result.Findings))
	}
	if sum.Critical != 2 || sum.High != 1 || sum.Medium != 1 || sum.Info != 1 {
		t.Fatalf("unexpected counts: critical=%d high=%d medium=%d info=%d", sum.Critical, sum.High, sum.Medium, sum.Info)
	}
	if counted := sum.Critical + sum.High + sum.Medium + sum.Low + sum.Info; counted != sum.TotalFindings {
		t.Fatalf("per-priority counts sum to %d, total is %d", counted, sum.TotalFindings)
	}
}

func TestSynthesizeSummaryUrgency(t *testing.T) {
	syn := service.NewSynthesizer()
	validation := &review.Validation{Valid: true, QualityScore: 0.8}

	withCritical := syn.Synthesize("task-1", outcomesWith(
		finding(review.KindSecurity, review.PriorityCritical, "Plain text passwords"),
	), validation)
	if !strings.Contains(withCritical.Summary, "immediate attention") {
		t.Fatalf("expected urgency sentence, got %q", withCritical.Summary)
	}

	withoutCritical := syn.Synthesize("task-2", outcomesWith(
		finding(review.KindOperations, review.PriorityLow, "Minor gap"),
	), validation)
	if strings.Contains(withoutCritical.Summary, "immediate attention") {
		t.Fatalf("urgency sentence without critical findings: %q", withoutCritical.Summary)
	}
}

func TestSynthesizeMarkdownReport(t *testing.T) {
	syn := service.NewSynthesizer()

	outcomes := outcomesWith(
		finding(review.KindSecurity, review.PriorityCritical, "Plain text passwords"),
	)
	outcomes[review.KindSecurity].Confidence = 0.9
	outcomes[review.KindSecurity].Summary = "Security analysis completed. Found 1 issues."

	validation := &review.Validation{
		Valid:           true,
		QualityScore:    0.8,
		Recommendations: []string{"Analysis completed with no inconsistencies"},
	}

	result := syn.Synthesize("task-1", outcomes, validation)

	for _, want := range []string{
		"# Documentation Review Report",
		"## Executive Summary",
		"### CRITICAL",
		"#### Plain text passwords",
		"## Reviewer Outcomes",
		"**Quality score**: 80%",
	} {
		if !strings.Contains(result.ReportMarkdown, want) {
			t.Fatalf("markdown report missing %q", want)
		}
	}
}
