// Package queue defines the work queue port that hands created tasks to
// the worker pool.
package queue

import "context"

// Handler processes one queued task identifier.
type Handler func(ctx context.Context, taskID string) error

// Queue is the port interface for the task handoff between the request
// surface and the pipeline workers. Enqueue must not block indefinitely:
// a bounded implementation returns domain.ErrQueueFull as its
// backpressure signal.
type Queue interface {
	// Enqueue submits a task identifier for background execution.
	Enqueue(ctx context.Context, taskID string) error

	// Subscribe registers the handler invoked for each queued task.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, handler Handler) (cancel func(), err error)

	// Close releases queue resources. Enqueue calls after Close fail.
	Close() error
}

// SubjectTaskCreated is the subject used by broker-backed implementations.
const SubjectTaskCreated = "reviews.task.created"
