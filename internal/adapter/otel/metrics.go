package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "docreview"

// Metrics holds all DocReview metric instruments.
type Metrics struct {
	ReviewsStarted   metric.Int64Counter
	ReviewsCompleted metric.Int64Counter
	ReviewsFailed    metric.Int64Counter
	PipelineDuration metric.Float64Histogram
	QueueRejected    metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.ReviewsStarted, err = meter.Int64Counter("docreview.reviews.started",
		metric.WithDescription("Number of review tasks started"))
	if err != nil {
		return nil, err
	}

	m.ReviewsCompleted, err = meter.Int64Counter("docreview.reviews.completed",
		metric.WithDescription("Number of review tasks completed"))
	if err != nil {
		return nil, err
	}

	m.ReviewsFailed, err = meter.Int64Counter("docreview.reviews.failed",
		metric.WithDescription("Number of review tasks failed"))
	if err != nil {
		return nil, err
	}

	m.PipelineDuration, err = meter.Float64Histogram("docreview.pipeline.duration_seconds",
		metric.WithDescription("Pipeline execution duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.QueueRejected, err = meter.Int64Counter("docreview.queue.rejected",
		metric.WithDescription("Number of tasks rejected by queue backpressure"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
