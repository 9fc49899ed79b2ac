package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/docreview/docreview/internal/domain/review"
)

// Quality score tuning. The score starts at a base value, loses points
// for logical errors and injected gap findings, and earns a bonus for a
// detailed analysis. Always clamped to [0,1].
const (
	qualityBase         = 0.8
	qualityErrorPenalty = 0.1
	qualityGapPenalty   = 0.05
	qualityDetailBonus  = 0.1
)

// ConflictRule inspects findings grouped by category and describes any
// cross-reviewer conflicts it detects. Rules are pluggable; the default
// adjudicator ships with none.
type ConflictRule func(byCategory map[string][]review.Finding) []string

// Adjudicator cross-checks the aggregate reviewer output: duplicate
// findings, coverage gaps and conflicts. Inconsistencies are recorded as
// data on the validation outcome, never raised as pipeline failures.
type Adjudicator struct {
	rules     []ConflictRule
	bonusOver int
}

// NewAdjudicator creates an Adjudicator. bonusOver is the total finding
// count above which the quality score earns its detail bonus.
func NewAdjudicator(bonusOver int, rules ...ConflictRule) *Adjudicator {
	return &Adjudicator{rules: rules, bonusOver: bonusOver}
}

// Validate checks all reviewer outcomes for internal consistency and
// computes the analysis quality score.
func (a *Adjudicator) Validate(outcomes map[review.Kind]*review.Outcome) *review.Validation {
	var all []review.Finding
	for _, kind := range review.AllKinds() {
		if out, ok := outcomes[kind]; ok {
			all = append(all, out.Findings...)
		}
	}

	logicalErrors := detectDuplicates(all)
	gaps := a.detectGaps(all)
	conflicts := a.detectConflicts(all)

	criticality := make(map[string]review.Priority, len(all))
	for _, f := range all {
		criticality[f.ID] = f.Priority
	}

	return &review.Validation{
		Valid:           len(logicalErrors) == 0 && len(conflicts) == 0,
		QualityScore:    a.qualityScore(len(all), len(logicalErrors), len(gaps)),
		GapFindings:     gaps,
		Conflicts:       conflicts,
		Criticality:     criticality,
		Recommendations: recommendations(logicalErrors, gaps, conflicts),
	}
}

// detectDuplicates reports an exact-title collision across all findings
// as one logical error per repeated occurrence.
func detectDuplicates(findings []review.Finding) []string {
	var errs []string
	seen := make(map[string]bool, len(findings))
	for _, f := range findings {
		if seen[f.Title] {
			errs = append(errs, fmt.Sprintf("duplicate finding: %s", f.Title))
		}
		seen[f.Title] = true
	}
	return errs
}

// detectGaps covers the "nothing flagged does not mean nothing wrong"
// risk: when no reviewer produced a critical security finding, an INFO
// advisory recommending a supplementary audit is injected.
func (a *Adjudicator) detectGaps(findings []review.Finding) []review.Finding {
	for _, f := range findings {
		if f.Priority == review.PriorityCritical && f.Reviewer == review.KindSecurity {
			return nil
		}
	}

	return []review.Finding{{
		ID:          uuid.NewString(),
		Reviewer:    review.KindSecurity,
		Priority:    review.PriorityInfo,
		Title:       "Supplementary security audit recommended",
		Description: "No critical security findings were produced, but absence of findings is not evidence of absence.",
		Remediation: "Run a supplementary security audit.",
		Category:    "security",
	}}
}

// detectConflicts groups findings by category and applies every
// configured conflict rule to the grouping.
func (a *Adjudicator) detectConflicts(findings []review.Finding) []string {
	byCategory := make(map[string][]review.Finding)
	for _, f := range findings {
		byCategory[f.Category] = append(byCategory[f.Category], f)
	}

	var conflicts []string
	for _, rule := range a.rules {
		conflicts = append(conflicts, rule(byCategory)...)
	}
	return conflicts
}

func (a *Adjudicator) qualityScore(total, logicalErrors, gaps int) float64 {
	score := qualityBase
	score -= float64(logicalErrors) * qualityErrorPenalty
	score -= float64(gaps) * qualityGapPenalty
	if total > a.bonusOver {
		score += qualityDetailBonus
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func recommendations(logicalErrors []string, gaps []review.Finding, conflicts []string) []string {
	var recs []string
	if len(logicalErrors) > 0 {
		recs = append(recs, "Resolve the duplicated findings in the analysis")
	}
	if len(gaps) > 0 {
		recs = append(recs, "Run an additional pass to cover the detected gaps")
	}
	if len(conflicts) > 0 {
		recs = append(recs, "Resolve the conflicts between reviewer results")
	}
	if len(recs) == 0 {
		recs = append(recs, "Analysis completed with no inconsistencies")
	}
	return recs
}
