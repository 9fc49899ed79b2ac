package reviewer

import (
	"context"
	"fmt"
	"strings"

	"github.com/docreview/docreview/internal/domain/review"
	"github.com/docreview/docreview/internal/port/completion"
)

const operationsSystemPrompt = `You are an experienced SRE/DevOps engineer. Review the documentation for ` +
	`operational reliability problems: single points of failure, scalability limits, missing monitoring, ` +
	`weak CI/CD processes and wasteful resource usage.`

const operationsConfidence = 0.87

// operationsReviewer checks monitoring, backups and operational readiness.
type operationsReviewer struct {
	client completion.Client
}

// NewOperations creates the operations reviewer.
func NewOperations(client completion.Client) Reviewer {
	return &operationsReviewer{client: client}
}

func (r *operationsReviewer) Kind() review.Kind { return review.KindOperations }

func (r *operationsReviewer) Analyze(ctx context.Context, t *review.Task) (*review.Outcome, error) {
	if _, err := complete(ctx, r.client, r.Kind(), t, operationsSystemPrompt); err != nil {
		return nil, err
	}

	doc := strings.ToLower(t.Document)
	var findings []review.Finding

	if !containsAny(doc, "monitoring", "мониторинг") {
		findings = append(findings, newFinding(r.Kind(), review.PriorityHigh,
			"Missing monitoring description",
			"The documentation does not describe a monitoring setup.",
			"Document the monitoring system, its metrics and its alerts.",
			"monitoring"))
	}

	if !containsAny(doc, "backup", "бэкап", "резерв") {
		findings = append(findings, newFinding(r.Kind(), review.PriorityMedium,
			"Missing backup description",
			"The documentation does not describe a backup strategy.",
			"Document the backup and disaster recovery strategy.",
			"reliability"))
	}

	if len(findings) == 0 {
		findings = append(findings, noIssuesFinding(r.Kind(),
			"No critical operational problems found.",
			"An additional SRE review is still recommended."))
	}

	return outcome(r.Kind(), findings,
		fmt.Sprintf("Found %d operational reliability issues", len(findings)),
		operationsConfidence), nil
}
