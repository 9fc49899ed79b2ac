package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "docreview"

// StartPipelineSpan starts a span covering one task's full pipeline run.
func StartPipelineSpan(ctx context.Context, taskID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "pipeline",
		trace.WithAttributes(attribute.String("task.id", taskID)),
	)
}

// StartStageSpan starts a span for one pipeline stage (plan, review,
// validate, synthesize).
func StartStageSpan(ctx context.Context, stage, taskID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, stage,
		trace.WithAttributes(attribute.String("task.id", taskID)),
	)
}
