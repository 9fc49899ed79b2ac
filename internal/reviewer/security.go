package reviewer

import (
	"context"
	"fmt"
	"strings"

	"github.com/docreview/docreview/internal/domain/review"
	"github.com/docreview/docreview/internal/port/completion"
)

const securitySystemPrompt = `You are an experienced security engineer (DevSecOps). Review the documentation ` +
	`for vulnerabilities (OWASP Top 10), non-compliance with security standards (ISO 27001, PCI DSS), ` +
	`infrastructure security problems and gaps in security processes.`

const securityConfidence = 0.90

// securityReviewer checks authentication, encryption and compliance gaps.
type securityReviewer struct {
	client completion.Client
}

// NewSecurity creates the security reviewer.
func NewSecurity(client completion.Client) Reviewer {
	return &securityReviewer{client: client}
}

func (r *securityReviewer) Kind() review.Kind { return review.KindSecurity }

func (r *securityReviewer) Analyze(ctx context.Context, t *review.Task) (*review.Outcome, error) {
	if _, err := complete(ctx, r.client, r.Kind(), t, securitySystemPrompt); err != nil {
		return nil, err
	}

	doc := strings.ToLower(t.Document)
	var findings []review.Finding

	if containsAny(doc, "password", "пароль") && !containsAny(doc, "hash", "хеш", "bcrypt") {
		findings = append(findings, newFinding(r.Kind(), review.PriorityCritical,
			"Passwords may be stored in plain text",
			"The documentation mentions passwords but never mentions hashing them.",
			"Hash passwords with bcrypt or an equivalent algorithm.",
			"authentication"))
	}

	if containsAny(doc, "api", "endpoint") && !containsAny(doc, "https", "tls", "ssl") {
		findings = append(findings, newFinding(r.Kind(), review.PriorityHigh,
			"No mention of HTTPS/TLS",
			"The documentation describes API endpoints without transport encryption.",
			"Require HTTPS for every API endpoint.",
			"encryption"))
	}

	if len(findings) == 0 {
		findings = append(findings, noIssuesFinding(r.Kind(),
			"No critical security problems found.",
			"A supplementary security audit is still recommended."))
	}

	return outcome(r.Kind(), findings,
		fmt.Sprintf("Found %d security issues", len(findings)),
		securityConfidence), nil
}
