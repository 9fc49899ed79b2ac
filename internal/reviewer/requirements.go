package reviewer

import (
	"context"
	"fmt"
	"strings"

	"github.com/docreview/docreview/internal/domain/review"
	"github.com/docreview/docreview/internal/port/completion"
)

const requirementsSystemPrompt = `You are an experienced systems analyst. Review technical documentation ` +
	`for problems in requirements, business processes and functionality: incomplete requirements, ` +
	`contradictions, missing non-functional requirements, broken process logic.`

const requirementsConfidence = 0.85

// requirementsReviewer checks requirements completeness and consistency.
type requirementsReviewer struct {
	client completion.Client
}

// NewRequirements creates the requirements reviewer.
func NewRequirements(client completion.Client) Reviewer {
	return &requirementsReviewer{client: client}
}

func (r *requirementsReviewer) Kind() review.Kind { return review.KindRequirements }

func (r *requirementsReviewer) Analyze(ctx context.Context, t *review.Task) (*review.Outcome, error) {
	analysis, err := complete(ctx, r.client, r.Kind(), t, requirementsSystemPrompt)
	if err != nil {
		return nil, err
	}

	doc := strings.ToLower(t.Document)
	var findings []review.Finding

	if !containsAny(doc, "requirements", "требования") {
		findings = append(findings, newFinding(r.Kind(), review.PriorityHigh,
			"Missing requirements section",
			"The documentation has no explicit section describing system requirements.",
			"Add a section covering functional and non-functional requirements.",
			"requirements"))
	}

	// The contradiction check inspects the generated analysis, not the
	// document: the backend is asked to call out contradictions explicitly.
	if containsAny(strings.ToLower(analysis), "contradiction", "противоречие") {
		findings = append(findings, newFinding(r.Kind(), review.PriorityMedium,
			"Possible contradictory requirements",
			"The analysis flagged requirements that may contradict each other.",
			"Run a requirements review focused on resolving the contradictions.",
			"consistency"))
	}

	if len(findings) == 0 {
		findings = append(findings, noIssuesFinding(r.Kind(),
			"No critical problems found in the documented requirements.",
			"Consider an additional review with domain experts."))
	}

	return outcome(r.Kind(), findings,
		fmt.Sprintf("Found %d requirements and process issues", len(findings)),
		requirementsConfidence), nil
}
