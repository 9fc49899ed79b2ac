// Package nats implements the work queue port using NATS JetStream.
package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/docreview/docreview/internal/domain"
	"github.com/docreview/docreview/internal/port/queue"
)

const streamName = "DOCREVIEW"

// maximum messages exceeded, returned by the server when the stream is
// at capacity under the discard-new policy.
const errCodeStreamMaxMsgs = 10077

// Queue implements the queue port on NATS JetStream. The stream is
// capped at the configured capacity with a discard-new policy, so a
// full stream rejects publishes and surfaces as domain.ErrQueueFull.
type Queue struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// Connect establishes a connection to NATS and ensures the JetStream
// stream exists with the configured capacity bound.
func Connect(ctx context.Context, url string, capacity int) (*Queue, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"reviews.>"},
		MaxMsgs:  int64(capacity),
		Discard:  jetstream.DiscardNew,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream stream create: %w", err)
	}

	slog.Info("nats connected", "url", url, "stream", streamName, "capacity", capacity)
	return &Queue{nc: nc, js: js}, nil
}

// Enqueue publishes a task identifier for asynchronous processing.
func (q *Queue) Enqueue(ctx context.Context, taskID string) error {
	_, err := q.js.Publish(ctx, queue.SubjectTaskCreated, []byte(taskID))
	if err != nil {
		var apiErr *jetstream.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode == errCodeStreamMaxMsgs {
			return fmt.Errorf("stream at capacity: %w", domain.ErrQueueFull)
		}
		return fmt.Errorf("nats publish %s: %w", queue.SubjectTaskCreated, err)
	}
	return nil
}

// Subscribe registers a handler for queued task identifiers. Handler
// errors Nak the message so the broker redelivers it.
func (q *Queue) Subscribe(ctx context.Context, handler queue.Handler) (func(), error) {
	consumer, err := q.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		FilterSubject: queue.SubjectTaskCreated,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("nats consumer create: %w", err)
	}

	cons, err := consumer.Consume(func(msg jetstream.Msg) {
		taskID := string(msg.Data())
		if err := handler(ctx, taskID); err != nil {
			slog.Error("queue handler failed", "task_id", taskID, "error", err)
			if nakErr := msg.Nak(); nakErr != nil {
				slog.Error("nats nak failed", "error", nakErr)
			}
			return
		}
		if ackErr := msg.Ack(); ackErr != nil {
			slog.Error("nats ack failed", "error", ackErr)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("nats consume: %w", err)
	}

	return cons.Stop, nil
}

// Close shuts down the NATS connection.
func (q *Queue) Close() error {
	q.nc.Close()
	return nil
}
