// Package store defines the persistence port for review tasks and results.
package store

import (
	"context"

	"github.com/docreview/docreview/internal/domain/review"
)

// Store is the port interface for task and result persistence, keyed by
// task identifier. Implementations must support concurrent access, keep
// at most one result per task (second write returns domain.ErrConflict),
// and make a result visible to readers only after the write completed.
type Store interface {
	// CreateTask persists a newly created task.
	CreateTask(ctx context.Context, t *review.Task) error

	// GetTask returns the task, or domain.ErrNotFound.
	GetTask(ctx context.Context, id string) (*review.Task, error)

	// UpdateTaskStatus advances the task's lifecycle status.
	UpdateTaskStatus(ctx context.Context, id string, status review.Status) error

	// PutResult stores the terminal result for a completed task.
	PutResult(ctx context.Context, r *review.Result) error

	// GetResult returns the stored result, or domain.ErrNotFound.
	GetResult(ctx context.Context, taskID string) (*review.Result, error)
}
