// Package memory provides in-process implementations of the store and
// queue ports, used for single-node deployments and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/docreview/docreview/internal/domain"
	"github.com/docreview/docreview/internal/domain/review"
)

// Store keeps tasks and results in memory behind a RWMutex. Values are
// copied on the way in and out so callers never share mutable state
// with the store.
type Store struct {
	mu      sync.RWMutex
	tasks   map[string]review.Task
	results map[string]review.Result
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		tasks:   make(map[string]review.Task),
		results: make(map[string]review.Result),
	}
}

// CreateTask stores a new task. An existing identifier is a conflict.
func (s *Store) CreateTask(_ context.Context, t *review.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[t.ID]; ok {
		return fmt.Errorf("task %s already exists: %w", t.ID, domain.ErrConflict)
	}
	s.tasks[t.ID] = *t
	return nil
}

// GetTask returns a copy of the task.
func (s *Store) GetTask(_ context.Context, id string) (*review.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return &t, nil
}

// UpdateTaskStatus advances the task's status and update timestamp.
func (s *Store) UpdateTaskStatus(_ context.Context, id string, status review.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	s.tasks[id] = t
	return nil
}

// PutResult stores the result for a task. Results are write-once: a
// second write for the same task is a conflict.
func (s *Store) PutResult(_ context.Context, r *review.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[r.TaskID]; !ok {
		return fmt.Errorf("task %s: %w", r.TaskID, domain.ErrNotFound)
	}
	if _, ok := s.results[r.TaskID]; ok {
		return fmt.Errorf("result for task %s already exists: %w", r.TaskID, domain.ErrConflict)
	}
	s.results[r.TaskID] = *r
	return nil
}

// GetResult returns a copy of the stored result.
func (s *Store) GetResult(_ context.Context, taskID string) (*review.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[taskID]
	if !ok {
		return nil, fmt.Errorf("result for task %s: %w", taskID, domain.ErrNotFound)
	}
	return &r, nil
}
