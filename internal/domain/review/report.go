package review

// Report is the machine-readable rendering of a completed review.
// It carries every finding field-by-field so that re-parsing the report
// reproduces the same per-priority counts as the original finding list.
type Report struct {
	Summary   ReportSummary             `json:"summary"`
	Findings  []Finding                 `json:"findings"`
	Reviewers map[Kind]ReviewerSnapshot `json:"reviewers"`
	Validation ValidationSnapshot       `json:"validation"`
}

// ReportSummary holds per-priority counts and the overall quality score.
type ReportSummary struct {
	TotalFindings int     `json:"total_findings"`
	Critical      int     `json:"critical"`
	High          int     `json:"high"`
	Medium        int     `json:"medium"`
	Low           int     `json:"low"`
	Info          int     `json:"info"`
	QualityScore  float64 `json:"quality_score"`
}

// ReviewerSnapshot summarizes one reviewer's outcome inside a report.
type ReviewerSnapshot struct {
	Status       Status  `json:"status"`
	FindingCount int     `json:"finding_count"`
	Confidence   float64 `json:"confidence"`
	Summary      string  `json:"summary"`
}

// ValidationSnapshot summarizes the adjudicator's outcome inside a report.
type ValidationSnapshot struct {
	Valid           bool     `json:"valid"`
	QualityScore    float64  `json:"quality_score"`
	GapFindingCount int      `json:"gap_finding_count"`
	ConflictCount   int      `json:"conflict_count"`
	Recommendations []string `json:"recommendations"`
}
