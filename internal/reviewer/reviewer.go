// Package reviewer implements the four specialist reviewers and the
// registry that maps reviewer kinds to constructors. Each reviewer sends
// the document to the completion backend under its own analytical lens,
// then derives structured findings from deterministic keyword heuristics
// over the original document, so results stay reproducible regardless of
// the generated prose.
package reviewer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docreview/docreview/internal/domain/review"
	"github.com/docreview/docreview/internal/port/completion"
)

// Reviewer applies one fixed analytical lens to a review task.
type Reviewer interface {
	// Kind identifies the reviewer variant.
	Kind() review.Kind

	// Analyze reviews the task's document and returns an outcome with at
	// least one finding. It fails only when the completion backend does.
	Analyze(ctx context.Context, t *review.Task) (*review.Outcome, error)
}

// complete runs one completion call for a reviewer. Backend failures are
// wrapped with the reviewer kind so the coordinator can log the culprit.
func complete(ctx context.Context, client completion.Client, kind review.Kind, t *review.Task, systemPrompt string) (string, error) {
	prompt := fmt.Sprintf(
		"Review the following documentation:\n\n%s\n\nContext: %v\n\n"+
			"For every issue give a title, description, remediation, priority (critical, high, medium, low) and category.",
		t.Document, t.Context,
	)

	text, err := client.Complete(ctx, prompt, systemPrompt)
	if err != nil {
		return "", fmt.Errorf("%s reviewer: %w", kind, err)
	}
	return text, nil
}

// newFinding builds an immutable finding attributed to the given reviewer.
func newFinding(kind review.Kind, priority review.Priority, title, description, remediation, category string) review.Finding {
	return review.Finding{
		ID:          uuid.NewString(),
		Reviewer:    kind,
		Priority:    priority,
		Title:       title,
		Description: description,
		Remediation: remediation,
		Category:    category,
	}
}

// noIssuesFinding is the guaranteed INFO fallback: every outcome carries
// at least one finding, even for a clean document.
func noIssuesFinding(kind review.Kind, description, remediation string) review.Finding {
	return newFinding(kind, review.PriorityInfo,
		fmt.Sprintf("No critical %s issues found", kind),
		description, remediation, "general")
}

// outcome assembles a completed review outcome for the given variant.
func outcome(kind review.Kind, findings []review.Finding, summary string, confidence float64) *review.Outcome {
	return &review.Outcome{
		Reviewer:   kind,
		Status:     review.StatusCompleted,
		Findings:   findings,
		Summary:    summary,
		Confidence: confidence,
		CreatedAt:  time.Now().UTC(),
	}
}

// containsAny reports whether text contains any of the given lowercase
// keywords. Keyword sets carry both English and Russian terms because the
// reviewed documents come in either language.
func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
