package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/docreview/docreview/internal/domain/review"
)

// Synthesizer merges reviewer findings and adjudicator-injected findings
// into one prioritized list and renders the final reports. Duplicate
// findings flagged by the adjudicator are kept: removing them would
// change externally observed issue counts.
type Synthesizer struct{}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize produces the terminal result for a task: the prioritized
// finding list, the narrative and structured reports, and the summary.
// No finding is ever dropped between reviewer output and final report.
func (s *Synthesizer) Synthesize(taskID string, outcomes map[review.Kind]*review.Outcome, validation *review.Validation) *review.Result {
	// Merge in fixed reviewer order so equal-priority findings keep a
	// deterministic producer order under the stable sort.
	var findings []review.Finding
	for _, kind := range review.AllKinds() {
		if out, ok := outcomes[kind]; ok {
			findings = append(findings, out.Findings...)
		}
	}
	findings = append(findings, validation.GapFindings...)

	review.SortFindings(findings)

	return &review.Result{
		TaskID:         taskID,
		Status:         review.StatusCompleted,
		Findings:       findings,
		Summary:        summarize(findings, validation),
		ReportMarkdown: renderMarkdown(findings, outcomes, validation),
		Report:         buildReport(findings, outcomes, validation),
		Validation:     *validation,
		CreatedAt:      time.Now().UTC(),
	}
}

// buildReport assembles the machine-readable report. Re-parsing it must
// reproduce the same per-priority counts as the finding list itself.
func buildReport(findings []review.Finding, outcomes map[review.Kind]*review.Outcome, validation *review.Validation) review.Report {
	counts := review.CountByPriority(findings)

	reviewers := make(map[review.Kind]review.ReviewerSnapshot, len(outcomes))
	for kind, out := range outcomes {
		reviewers[kind] = review.ReviewerSnapshot{
			Status:       out.Status,
			FindingCount: len(out.Findings),
			Confidence:   out.Confidence,
			Summary:      out.Summary,
		}
	}

	return review.Report{
		Summary: review.ReportSummary{
			TotalFindings: len(findings),
			Critical:      counts[review.PriorityCritical],
			High:          counts[review.PriorityHigh],
			Medium:        counts[review.PriorityMedium],
			Low:           counts[review.PriorityLow],
			Info:          counts[review.PriorityInfo],
			QualityScore:  validation.QualityScore,
		},
		Findings:  findings,
		Reviewers: reviewers,
		Validation: review.ValidationSnapshot{
			Valid:           validation.Valid,
			QualityScore:    validation.QualityScore,
			GapFindingCount: len(validation.GapFindings),
			ConflictCount:   len(validation.Conflicts),
			Recommendations: validation.Recommendations,
		},
	}
}

// renderMarkdown renders the narrative report: executive summary,
// findings grouped by priority band, and a per-reviewer appendix.
func renderMarkdown(findings []review.Finding, outcomes map[review.Kind]*review.Outcome, validation *review.Validation) string {
	var b strings.Builder

	headline := "Analysis complete"
	if len(validation.Recommendations) > 0 {
		headline = validation.Recommendations[0]
	}

	counts := review.CountByPriority(findings)
	fmt.Fprintf(&b, "# Documentation Review Report\n\n## Executive Summary\n\n%s\n\n", headline)
	fmt.Fprintf(&b, "**Quality score**: %.0f%%\n\n", validation.QualityScore*100)
	fmt.Fprintf(&b, "**Total findings**: %d\n\n", len(findings))
	fmt.Fprintf(&b, "**Critical**: %d\n\n", counts[review.PriorityCritical])

	b.WriteString("## Findings\n")
	for _, priority := range review.Priorities() {
		var band []review.Finding
		for _, f := range findings {
			if f.Priority == priority {
				band = append(band, f)
			}
		}
		if len(band) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n### %s\n\n", strings.ToUpper(string(priority)))
		for _, f := range band {
			fmt.Fprintf(&b, "#### %s\n\n", f.Title)
			fmt.Fprintf(&b, "**Reviewer**: %s\n\n", f.Reviewer)
			fmt.Fprintf(&b, "**Description**: %s\n\n", f.Description)
			fmt.Fprintf(&b, "**Remediation**: %s\n\n", f.Remediation)
			if f.Location != "" {
				fmt.Fprintf(&b, "**Location**: %s\n\n", f.Location)
			}
			b.WriteString("---\n\n")
		}
	}

	b.WriteString("\n## Reviewer Outcomes\n\n")
	for _, kind := range review.AllKinds() {
		out, ok := outcomes[kind]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", kind)
		fmt.Fprintf(&b, "**Status**: %s\n\n", out.Status)
		fmt.Fprintf(&b, "**Findings**: %d\n\n", len(out.Findings))
		fmt.Fprintf(&b, "**Confidence**: %.0f%%\n\n", out.Confidence*100)
		fmt.Fprintf(&b, "**Summary**: %s\n\n", out.Summary)
	}

	return b.String()
}

// summarize writes the one-paragraph summary, with an urgency sentence
// appended only when critical findings exist.
func summarize(findings []review.Finding, validation *review.Validation) string {
	counts := review.CountByPriority(findings)
	critical := counts[review.PriorityCritical]
	high := counts[review.PriorityHigh]

	summary := fmt.Sprintf("Found %d issues: %d critical, %d high priority. ", len(findings), critical, high)
	summary += fmt.Sprintf("Analysis quality score: %.0f%%.", validation.QualityScore*100)
	if critical > 0 {
		summary += " The critical issues require immediate attention."
	}
	return summary
}
