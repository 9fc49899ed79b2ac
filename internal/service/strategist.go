package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/docreview/docreview/internal/config"
	"github.com/docreview/docreview/internal/domain"
	"github.com/docreview/docreview/internal/domain/review"
	"github.com/docreview/docreview/internal/port/completion"
	"github.com/docreview/docreview/internal/reviewer"
)

const strategistSystemPrompt = `You are an experienced systems analyst. Assess documentation review tasks: ` +
	`identify the documentation type, the main areas to analyze, the task complexity and the priority aspects.`

// Strategist inspects an incoming task and emits an execution plan:
// which reviewers to run, how deep, and the expected duration.
type Strategist struct {
	client   completion.Client
	registry *reviewer.Registry
	cfg      config.Pipeline
}

// NewStrategist creates a Strategist.
func NewStrategist(client completion.Client, registry *reviewer.Registry, cfg config.Pipeline) *Strategist {
	return &Strategist{client: client, registry: registry, cfg: cfg}
}

// Plan classifies the task and builds its execution plan. It fails only
// for a malformed task (empty document); completion backend failures
// degrade to a document-only classification instead of failing the plan.
func (s *Strategist) Plan(ctx context.Context, t *review.Task) (*review.Plan, error) {
	if t.Document == "" {
		return nil, fmt.Errorf("plan task %s: empty document: %w", t.ID, domain.ErrValidation)
	}

	// Every reviewer runs on every task. Selection by document kind or
	// focus area is an extension point; the current policy is "always all".
	reviewers := s.registry.Kinds()

	plan := &review.Plan{
		TaskID:           t.ID,
		Reviewers:        reviewers,
		Depth:            s.depth(t.Document),
		FocusAreas:       s.focusAreas(ctx, t),
		EstimatedSeconds: int(s.cfg.ReviewerCost.Seconds()) * len(reviewers),
		CreatedAt:        time.Now().UTC(),
	}

	slog.Info("plan created",
		"task_id", t.ID,
		"document_kind", ClassifyDocument(t.Document),
		"depth", plan.Depth,
		"reviewers", len(plan.Reviewers),
		"focus_areas", plan.FocusAreas,
	)
	return plan, nil
}

// ClassifyDocument tags the document kind with a lowercase containment
// scan over domain keyword sets. Deterministic given document content.
func ClassifyDocument(document string) string {
	doc := strings.ToLower(document)
	switch {
	case strings.Contains(doc, "api") || strings.Contains(doc, "endpoint"):
		return "api"
	case strings.Contains(doc, "architecture") || strings.Contains(doc, "архитектура"):
		return "architecture"
	case strings.Contains(doc, "security") || strings.Contains(doc, "безопасность"):
		return "security"
	default:
		return "general"
	}
}

// depth maps document size to a review depth band.
func (s *Strategist) depth(document string) review.Depth {
	switch {
	case len(document) < s.cfg.QuickDocChars:
		return review.DepthQuick
	case len(document) > s.cfg.DeepDocChars:
		return review.DepthDeep
	default:
		return review.DepthStandard
	}
}

// focusAreas scans a completion-derived assessment of the task for focus
// keywords. When the backend is unavailable the scan falls back to the
// document itself: planning must not fail on backend errors.
func (s *Strategist) focusAreas(ctx context.Context, t *review.Task) []string {
	head := t.Document
	if len(head) > 500 {
		head = head[:500]
	}
	prompt := fmt.Sprintf(
		"Assess this documentation review task.\n\nDocument (first 500 characters):\n%s\n\nContext: %v\n\n"+
			"Identify: the documentation type, the main areas to analyze, the complexity, the priority aspects.",
		head, t.Context,
	)

	blob, err := s.client.Complete(ctx, prompt, strategistSystemPrompt)
	if err != nil {
		slog.Warn("strategist assessment unavailable, classifying from document", "task_id", t.ID, "error", err)
		blob = t.Document
	}

	blob = strings.ToLower(blob)
	var areas []string
	for _, probe := range []struct {
		area     string
		keywords []string
	}{
		{"requirements", []string{"requirements", "требования"}},
		{"security", []string{"security", "безопасность"}},
		{"performance", []string{"performance", "производительность"}},
		{"reliability", []string{"reliability", "надежность"}},
	} {
		for _, kw := range probe.keywords {
			if strings.Contains(blob, kw) {
				areas = append(areas, probe.area)
				break
			}
		}
	}
	if len(areas) == 0 {
		areas = []string{"general"}
	}
	return areas
}
