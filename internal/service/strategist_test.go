package service_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/docreview/docreview/internal/domain"
	"github.com/docreview/docreview/internal/domain/review"
	"github.com/docreview/docreview/internal/reviewer"
	"github.com/docreview/docreview/internal/service"
)

func newTask(doc string) *review.Task {
	now := time.Now().UTC()
	return &review.Task{
		ID:           "task-1",
		Document:     doc,
		DocumentKind: "markdown",
		Status:       review.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPlanEmptyDocument(t *testing.T) {
	client := &stubCompletion{reply: "assessment"}
	strat := service.NewStrategist(client, reviewer.NewRegistry(client), testPipelineConfig())

	_, err := strat.Plan(context.Background(), newTask(""))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestPlanDepthBands(t *testing.T) {
	client := &stubCompletion{reply: "assessment"}
	strat := service.NewStrategist(client, reviewer.NewRegistry(client), testPipelineConfig())

	tests := []struct {
		name string
		doc  string
		want review.Depth
	}{
		{"short doc", "tiny", review.DepthQuick},
		{"medium doc", strings.Repeat("a", 1000), review.DepthStandard},
		{"long doc", strings.Repeat("a", 9000), review.DepthDeep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := strat.Plan(context.Background(), newTask(tt.doc))
			if err != nil {
				t.Fatalf("Plan failed: %v", err)
			}
			if plan.Depth != tt.want {
				t.Fatalf("expected depth %s, got %s", tt.want, plan.Depth)
			}
		})
	}
}

func TestPlanRunsAllReviewers(t *testing.T) {
	client := &stubCompletion{reply: "assessment"}
	strat := service.NewStrategist(client, reviewer.NewRegistry(client), testPipelineConfig())

	plan, err := strat.Plan(context.Background(), newTask("# Design doc"))
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	if !slices.Equal(plan.Reviewers, review.AllKinds()) {
		t.Fatalf("expected all reviewer kinds, got %v", plan.Reviewers)
	}
	if plan.EstimatedSeconds != 240 {
		t.Fatalf("expected 240 estimated seconds, got %d", plan.EstimatedSeconds)
	}
}

func TestPlanSurvivesBackendFailure(t *testing.T) {
	client := &stubCompletion{err: errors.New("backend down")}
	strat := service.NewStrategist(client, reviewer.NewRegistry(client), testPipelineConfig())

	plan, err := strat.Plan(context.Background(), newTask("The system must meet strict security requirements."))
	if err != nil {
		t.Fatalf("Plan failed on backend error: %v", err)
	}

	// Focus areas fall back to scanning the document itself.
	if !slices.Contains(plan.FocusAreas, "security") {
		t.Fatalf("expected security focus area from document scan, got %v", plan.FocusAreas)
	}
	if !slices.Contains(plan.FocusAreas, "requirements") {
		t.Fatalf("expected requirements focus area from document scan, got %v", plan.FocusAreas)
	}
}

func TestPlanDefaultFocusArea(t *testing.T) {
	client := &stubCompletion{reply: "nothing notable"}
	strat := service.NewStrategist(client, reviewer.NewRegistry(client), testPipelineConfig())

	plan, err := strat.Plan(context.Background(), newTask("plain text"))
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if !slices.Equal(plan.FocusAreas, []string{"general"}) {
		t.Fatalf("expected general fallback, got %v", plan.FocusAreas)
	}
}

func TestClassifyDocument(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{"REST API endpoint list", "api"},
		{"Service architecture overview", "architecture"},
		{"Обзор архитектура системы", "architecture"},
		{"Security considerations", "security"},
		{"Политика безопасность данных", "security"},
		{"Meeting notes", "general"},
	}

	for _, tt := range tests {
		if got := service.ClassifyDocument(tt.doc); got != tt.want {
			t.Fatalf("ClassifyDocument(%q) = %q, want %q", tt.doc, got, tt.want)
		}
	}
}
