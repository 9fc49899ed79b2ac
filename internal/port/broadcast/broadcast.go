// Package broadcast defines the port for pushing task lifecycle events
// to connected clients.
package broadcast

import "context"

// Broadcaster fans an event out to every connected client. Implementations
// must not block the caller; a slow client is the adapter's problem.
type Broadcaster interface {
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}

// Event types published by the review pipeline.
const (
	EventTaskStatus    = "task.status"
	EventTaskCompleted = "task.completed"
)
