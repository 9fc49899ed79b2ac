package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/docreview/docreview/internal/domain"
	"github.com/docreview/docreview/internal/port/queue"
)

// Queue is a bounded in-process work queue backed by a channel. Enqueue
// never blocks: when the buffer is full the task is rejected with
// domain.ErrQueueFull so the caller can shed load.
type Queue struct {
	tasks  chan string
	mu     sync.Mutex
	closed bool
}

// NewQueue creates a queue with the given buffer capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{
		tasks: make(chan string, capacity),
	}
}

// Enqueue submits a task identifier for asynchronous processing.
func (q *Queue) Enqueue(_ context.Context, taskID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return fmt.Errorf("queue closed: %w", domain.ErrQueueFull)
	}

	select {
	case q.tasks <- taskID:
		return nil
	default:
		return fmt.Errorf("queue at capacity: %w", domain.ErrQueueFull)
	}
}

// Subscribe starts a dispatcher goroutine that feeds queued task
// identifiers to the handler. Handler errors are logged and the
// dispatcher moves on; one bad task never stalls the queue.
func (q *Queue) Subscribe(ctx context.Context, handler queue.Handler) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		for {
			select {
			case <-subCtx.Done():
				return
			case taskID, ok := <-q.tasks:
				if !ok {
					return
				}
				if err := handler(subCtx, taskID); err != nil {
					slog.Error("queue handler failed", "task_id", taskID, "error", err)
				}
			}
		}
	}()

	return cancel, nil
}

// Close stops accepting new tasks.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	return nil
}
