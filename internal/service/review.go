// Package service implements the review pipeline use cases: planning,
// concurrent reviewer execution, validation, synthesis and the task
// lifecycle visible to external pollers.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	otelobs "github.com/docreview/docreview/internal/adapter/otel"
	"github.com/docreview/docreview/internal/adapter/ws"
	"github.com/docreview/docreview/internal/config"
	"github.com/docreview/docreview/internal/domain"
	"github.com/docreview/docreview/internal/domain/review"
	"github.com/docreview/docreview/internal/logger"
	"github.com/docreview/docreview/internal/port/broadcast"
	"github.com/docreview/docreview/internal/port/cache"
	"github.com/docreview/docreview/internal/port/queue"
	"github.com/docreview/docreview/internal/port/store"
)

// ReviewService owns the task lifecycle. It creates tasks, hands them to
// the work queue, executes the pipeline, and answers status, result and
// report queries.
type ReviewService struct {
	store store.Store
	queue queue.Queue
	hub   broadcast.Broadcaster

	strategist  *Strategist
	coordinator *Coordinator
	adjudicator *Adjudicator
	synthesizer *Synthesizer

	cache    cache.Cache
	cacheTTL time.Duration
	metrics  *otelobs.Metrics

	estimateSeconds int
}

// NewReviewService creates a ReviewService. All pipeline components are
// constructed eagerly by the caller and injected here; nothing is
// initialized lazily on first use. cache and metrics may be nil.
func NewReviewService(
	st store.Store,
	q queue.Queue,
	hub broadcast.Broadcaster,
	strategist *Strategist,
	coordinator *Coordinator,
	adjudicator *Adjudicator,
	synthesizer *Synthesizer,
	reportCache cache.Cache,
	cfg config.Pipeline,
	cacheTTL time.Duration,
	metrics *otelobs.Metrics,
) *ReviewService {
	return &ReviewService{
		store:           st,
		queue:           q,
		hub:             hub,
		strategist:      strategist,
		coordinator:     coordinator,
		adjudicator:     adjudicator,
		synthesizer:     synthesizer,
		cache:           reportCache,
		cacheTTL:        cacheTTL,
		metrics:         metrics,
		estimateSeconds: int(cfg.ReviewerCost.Seconds()) * len(review.AllKinds()),
	}
}

// CreateResponse is returned when a task is accepted.
type CreateResponse struct {
	TaskID           string `json:"task_id"`
	Status           string `json:"status"`
	EstimatedSeconds int    `json:"estimated_seconds"`
}

// StatusResponse reports a task's lifecycle state to pollers.
type StatusResponse struct {
	TaskID    string        `json:"task_id"`
	Status    review.Status `json:"status"`
	HasResult bool          `json:"has_result"`
}

// ResultResponse carries the terminal result of a completed task.
type ResultResponse struct {
	TaskID       string        `json:"task_id"`
	Status       review.Status `json:"status"`
	Summary      string        `json:"summary"`
	IssueCount   int           `json:"issue_count"`
	QualityScore float64       `json:"quality_score"`
	Report       review.Report `json:"report"`
}

// Create accepts a document for review, persists the task in PENDING
// state and hands it to the work queue. The call returns before the
// pipeline runs. A full queue surfaces as domain.ErrQueueFull.
func (s *ReviewService) Create(ctx context.Context, req review.CreateRequest) (*CreateResponse, error) {
	if req.Document == "" {
		return nil, fmt.Errorf("document is required: %w", domain.ErrValidation)
	}
	if req.DocumentKind == "" {
		req.DocumentKind = "markdown"
	}

	now := time.Now().UTC()
	t := &review.Task{
		ID:           uuid.NewString(),
		Document:     req.Document,
		DocumentKind: req.DocumentKind,
		Context:      req.Context,
		Status:       review.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if err := s.queue.Enqueue(ctx, t.ID); err != nil {
		// The task can never execute; fail it rather than leave it
		// PENDING forever.
		if s.metrics != nil {
			s.metrics.QueueRejected.Add(ctx, 1)
		}
		s.setStatus(ctx, t.ID, review.StatusFailed)
		return nil, fmt.Errorf("enqueue task %s: %w", t.ID, err)
	}

	if s.metrics != nil {
		s.metrics.ReviewsStarted.Add(ctx, 1)
	}
	s.hub.BroadcastEvent(ctx, broadcast.EventTaskStatus, ws.TaskStatusEvent{
		TaskID: t.ID,
		Status: string(review.StatusPending),
	})

	slog.Info("task created", "task_id", t.ID, "document_kind", t.DocumentKind, "document_chars", len(t.Document))

	return &CreateResponse{
		TaskID:           t.ID,
		Status:           "started",
		EstimatedSeconds: s.estimateSeconds,
	}, nil
}

// GetStatus returns a task's lifecycle state and whether a result exists.
func (s *ReviewService) GetStatus(ctx context.Context, taskID string) (*StatusResponse, error) {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", taskID, err)
	}

	hasResult := false
	if _, err := s.store.GetResult(ctx, taskID); err == nil {
		hasResult = true
	}

	return &StatusResponse{TaskID: t.ID, Status: t.Status, HasResult: hasResult}, nil
}

// GetResult returns the stored result for a completed task. Tasks that
// failed (or have not finished) have no result: callers get NotFound.
func (s *ReviewService) GetResult(ctx context.Context, taskID string) (*ResultResponse, error) {
	r, err := s.store.GetResult(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get result %s: %w", taskID, err)
	}

	return &ResultResponse{
		TaskID:       r.TaskID,
		Status:       r.Status,
		Summary:      r.Summary,
		IssueCount:   len(r.Findings),
		QualityScore: r.Validation.QualityScore,
		Report:       r.Report,
	}, nil
}

// GetReport renders the stored report in the requested format
// ("markdown" or "json"). Rendered reports are cached; results are
// immutable so the cache never serves stale data.
func (s *ReviewService) GetReport(ctx context.Context, taskID, format string) ([]byte, error) {
	switch format {
	case "markdown", "json":
	default:
		return nil, fmt.Errorf("unsupported report format %q: %w", format, domain.ErrValidation)
	}

	cacheKey := "report:" + taskID + ":" + format
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			return data, nil
		}
	}

	r, err := s.store.GetResult(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get result %s: %w", taskID, err)
	}

	var data []byte
	if format == "markdown" {
		data = []byte(r.ReportMarkdown)
	} else {
		data, err = json.Marshal(r.Report)
		if err != nil {
			return nil, fmt.Errorf("marshal report %s: %w", taskID, err)
		}
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
	}
	return data, nil
}

// Execute runs the full pipeline for one queued task. Every failure,
// including a panic, is absorbed here: the task transitions to FAILED
// and the error is logged with the task identifier. Nothing escapes to
// crash the worker or disturb other in-flight tasks.
func (s *ReviewService) Execute(ctx context.Context, taskID string) {
	ctx = logger.WithTaskID(ctx, taskID)
	ctx, span := otelobs.StartPipelineSpan(ctx, taskID)
	defer span.End()

	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("pipeline panic: %v", r)
			}
		}()
		return s.run(ctx, taskID)
	}()

	if s.metrics != nil {
		s.metrics.PipelineDuration.Record(ctx, time.Since(start).Seconds())
	}

	if err != nil {
		slog.Error("review failed", "task_id", taskID, "error", err)
		s.setStatus(ctx, taskID, review.StatusFailed)
		if s.metrics != nil {
			s.metrics.ReviewsFailed.Add(ctx, 1)
		}
		return
	}

	if s.metrics != nil {
		s.metrics.ReviewsCompleted.Add(ctx, 1)
	}
	slog.Info("review completed", "task_id", taskID, "duration_ms", time.Since(start).Milliseconds())
}

// run executes the pipeline stages in order. The result is stored before
// the status flips to COMPLETED so a reader never observes a completed
// task without a fully written result.
func (s *ReviewService) run(ctx context.Context, taskID string) error {
	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("load task: %w", err)
	}
	if t.Status.Terminal() {
		// Redelivery of an already finished task (broker replay).
		slog.Warn("skipping terminal task", "task_id", taskID, "status", t.Status)
		return nil
	}

	s.setStatus(ctx, taskID, review.StatusInProgress)

	planCtx, planSpan := otelobs.StartStageSpan(ctx, "plan", taskID)
	plan, err := s.strategist.Plan(planCtx, t)
	planSpan.End()
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	runCtx, runSpan := otelobs.StartStageSpan(ctx, "review", taskID)
	outcomes, err := s.coordinator.Run(runCtx, t, plan)
	runSpan.End()
	if err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}

	_, validateSpan := otelobs.StartStageSpan(ctx, "validate", taskID)
	validation := s.adjudicator.Validate(outcomes)
	validateSpan.End()

	_, synthSpan := otelobs.StartStageSpan(ctx, "synthesize", taskID)
	result := s.synthesizer.Synthesize(taskID, outcomes, validation)
	synthSpan.End()

	if err := s.store.PutResult(ctx, result); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	s.setStatus(ctx, taskID, review.StatusCompleted)

	s.hub.BroadcastEvent(ctx, broadcast.EventTaskCompleted, ws.TaskCompletedEvent{
		TaskID:       taskID,
		IssueCount:   len(result.Findings),
		QualityScore: result.Validation.QualityScore,
	})
	return nil
}

// setStatus advances the task status and broadcasts the transition.
// Store errors here are logged, not propagated: by this point the
// pipeline outcome is already decided.
func (s *ReviewService) setStatus(ctx context.Context, taskID string, status review.Status) {
	if err := s.store.UpdateTaskStatus(ctx, taskID, status); err != nil {
		slog.Error("status update failed", "task_id", taskID, "status", status, "error", err)
		return
	}
	s.hub.BroadcastEvent(ctx, broadcast.EventTaskStatus, ws.TaskStatusEvent{
		TaskID: taskID,
		Status: string(status),
	})
}
