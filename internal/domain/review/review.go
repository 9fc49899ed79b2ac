// Package review defines the domain types for document review tasks:
// the task lifecycle, reviewer findings, execution plans, validation
// outcomes and the final synthesized result.
package review

import (
	"sort"
	"time"
)

// Status represents the lifecycle state of a review task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Kind identifies a reviewer variant. Each kind owns one fixed
// analytical lens over the document.
type Kind string

const (
	KindRequirements Kind = "requirements"
	KindArchitecture Kind = "architecture"
	KindSecurity     Kind = "security"
	KindOperations   Kind = "operations"
)

// AllKinds lists every reviewer kind in dispatch order.
func AllKinds() []Kind {
	return []Kind{KindRequirements, KindArchitecture, KindSecurity, KindOperations}
}

// Priority orders findings from most to least urgent.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
	PriorityInfo     Priority = "info"
)

// priorityRank maps each priority to its sort position. Unknown
// priorities sort last.
var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
	PriorityInfo:     4,
}

// Rank returns the total-order position of the priority, lower is more urgent.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// Priorities lists all priorities from most to least urgent.
func Priorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow, PriorityInfo}
}

// Task is one document submitted for review. The document and context are
// fixed at creation; only the status and updated timestamp change afterwards,
// and only the pipeline mutates them.
type Task struct {
	ID           string         `json:"id"`
	Document     string         `json:"document"`
	DocumentKind string         `json:"document_kind"`
	Context      map[string]any `json:"context,omitempty"`
	Status       Status         `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// CreateRequest holds the fields needed to submit a document for review.
type CreateRequest struct {
	Document     string         `json:"document"`
	DocumentKind string         `json:"document_kind,omitempty"`
	Context      map[string]any `json:"context,omitempty"`
}

// Finding is one discrete issue identified by a reviewer or injected by
// the adjudicator. Immutable once created.
type Finding struct {
	ID          string         `json:"id"`
	Reviewer    Kind           `json:"reviewer"`
	Priority    Priority       `json:"priority"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Remediation string         `json:"remediation"`
	Category    string         `json:"category"`
	Location    string         `json:"location,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Outcome is the product of one reviewer invocation: its findings, a
// summary and a fixed per-variant confidence in [0,1].
type Outcome struct {
	Reviewer   Kind      `json:"reviewer"`
	Status     Status    `json:"status"`
	Findings   []Finding `json:"findings"`
	Summary    string    `json:"summary"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// Depth tags how thorough a review pass should be.
type Depth string

const (
	DepthQuick    Depth = "quick"
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// Plan is the strategist's execution plan for one task: which reviewers
// to run, how deep, and what the run is expected to cost in wall time.
type Plan struct {
	TaskID           string    `json:"task_id"`
	Reviewers        []Kind    `json:"reviewers"`
	Depth            Depth     `json:"depth"`
	FocusAreas       []string  `json:"focus_areas"`
	EstimatedSeconds int       `json:"estimated_seconds"`
	CreatedAt        time.Time `json:"created_at"`
}

// Validation is the adjudicator's cross-check of all reviewer outcomes.
// Logical errors and conflicts are recorded as data, never raised as
// pipeline failures.
type Validation struct {
	Valid           bool                `json:"valid"`
	QualityScore    float64             `json:"quality_score"`
	GapFindings     []Finding           `json:"gap_findings"`
	Conflicts       []string            `json:"conflicts"`
	Criticality     map[string]Priority `json:"criticality"`
	Recommendations []string            `json:"recommendations"`
}

// Result is the terminal product of a completed review. Exactly one
// Result exists per completed task; failed tasks have none.
type Result struct {
	TaskID         string     `json:"task_id"`
	Status         Status     `json:"status"`
	Findings       []Finding  `json:"findings"`
	Summary        string     `json:"summary"`
	ReportMarkdown string     `json:"report_markdown"`
	Report         Report     `json:"report"`
	Validation     Validation `json:"validation"`
	CreatedAt      time.Time  `json:"created_at"`
}

// SortFindings orders findings by priority, most urgent first. The sort
// is stable: findings of equal priority keep their arrival order.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Priority.Rank() < findings[j].Priority.Rank()
	})
}

// CountByPriority tallies findings per priority band.
func CountByPriority(findings []Finding) map[Priority]int {
	counts := make(map[Priority]int, len(priorityRank))
	for _, f := range findings {
		counts[f.Priority]++
	}
	return counts
}
