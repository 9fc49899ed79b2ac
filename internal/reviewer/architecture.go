package reviewer

import (
	"context"
	"fmt"
	"strings"

	"github.com/docreview/docreview/internal/domain/review"
	"github.com/docreview/docreview/internal/port/completion"
)

const architectureSystemPrompt = `You are an experienced systems architect. Review the architectural decisions ` +
	`in the documentation for anti-patterns, SOLID/DRY/KISS violations, suboptimal designs, ` +
	`scalability problems and missing components.`

const architectureConfidence = 0.88

// architectureReviewer checks architectural decisions and scalability.
type architectureReviewer struct {
	client completion.Client
}

// NewArchitecture creates the architecture reviewer.
func NewArchitecture(client completion.Client) Reviewer {
	return &architectureReviewer{client: client}
}

func (r *architectureReviewer) Kind() review.Kind { return review.KindArchitecture }

func (r *architectureReviewer) Analyze(ctx context.Context, t *review.Task) (*review.Outcome, error) {
	if _, err := complete(ctx, r.client, r.Kind(), t, architectureSystemPrompt); err != nil {
		return nil, err
	}

	doc := strings.ToLower(t.Document)
	var findings []review.Finding

	if containsAny(doc, "monolith", "монолит") && !containsAny(doc, "scaling", "масштабирование") {
		findings = append(findings, newFinding(r.Kind(), review.PriorityHigh,
			"Monolithic architecture without a scaling strategy",
			"The documentation describes a monolith but never states how it scales.",
			"Describe the scaling strategy, or evaluate splitting into services.",
			"scalability"))
	}

	if !containsAny(doc, "component", "компонент") {
		findings = append(findings, newFinding(r.Kind(), review.PriorityMedium,
			"Missing component description",
			"The documentation does not describe the system's main components.",
			"Add a component breakdown and how the components interact.",
			"architecture"))
	}

	if len(findings) == 0 {
		findings = append(findings, noIssuesFinding(r.Kind(),
			"No critical architectural problems found.",
			"Consider an additional architecture review."))
	}

	return outcome(r.Kind(), findings,
		fmt.Sprintf("Found %d architectural issues", len(findings)),
		architectureConfidence), nil
}
