package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docreview/docreview/internal/domain/review"
	"github.com/docreview/docreview/internal/reviewer"
)

// Coordinator executes a plan: it fans out to every reviewer the plan
// names, waits for all of them, and returns the aggregate view.
//
// The join is an all-or-nothing barrier. A single reviewer failure fails
// the whole task; no partial aggregate is ever returned. The first
// failure does not cancel siblings: they run to completion behind the
// barrier and their outcomes are discarded.
type Coordinator struct {
	registry *reviewer.Registry
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(registry *reviewer.Registry) *Coordinator {
	return &Coordinator{registry: registry}
}

// Run invokes every reviewer named in the plan concurrently and collects
// one outcome per reviewer kind.
func (c *Coordinator) Run(ctx context.Context, t *review.Task, plan *review.Plan) (map[review.Kind]*review.Outcome, error) {
	// Resolve every reviewer before launching anything: an unknown kind
	// is a lookup error, not a mid-flight failure.
	reviewers := make([]reviewer.Reviewer, len(plan.Reviewers))
	for i, kind := range plan.Reviewers {
		r, err := c.registry.Lookup(kind)
		if err != nil {
			return nil, err
		}
		reviewers[i] = r
	}

	type slot struct {
		outcome *review.Outcome
		err     error
	}

	results := make([]slot, len(reviewers))
	var wg sync.WaitGroup

	start := time.Now()
	for i, r := range reviewers {
		wg.Add(1)
		go func(idx int, r reviewer.Reviewer) {
			defer wg.Done()
			out, err := r.Analyze(ctx, t)
			if err != nil {
				slog.Warn("reviewer failed", "task_id", t.ID, "reviewer", r.Kind(), "error", err)
				results[idx] = slot{err: err}
				return
			}
			results[idx] = slot{outcome: out}
		}(i, r)
	}
	wg.Wait()

	outcomes := make(map[review.Kind]*review.Outcome, len(reviewers))
	for i, res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("run plan for task %s: %w", t.ID, res.err)
		}
		outcomes[plan.Reviewers[i]] = res.outcome
	}

	slog.Info("reviewers completed",
		"task_id", t.ID,
		"reviewers", len(outcomes),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return outcomes, nil
}
