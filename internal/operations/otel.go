package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"participation/internal/infrastructure"
)

const (
	TracerName = "participation.operation"
)

// OperationTracer provides OpenTelemetry instrumentation for report runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer from the run's providers. Nil
// providers give a tracer that records nothing.
func NewOperationTracer(providers *infrastructure.OTelProviders) *OperationTracer {
	if providers == nil || providers.Tracer == nil {
		return &OperationTracer{tracer: noop.NewTracerProvider().Tracer(TracerName)}
	}
	return &OperationTracer{
		tracer:  providers.Tracer,
		metrics: providers.Metrics,
	}
}

// Metrics returns the pipeline instruments, nil when telemetry is off
func (ot *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	return ot.metrics
}

// TraceOperationExecution creates the root span of a run
func (ot *OperationTracer) TraceOperationExecution(ctx context.Context, operationID, inputPath string) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("operation.input", inputPath),
		),
	)
}

// TraceStepExecution creates a span for one step. The span name is the
// step ID.
func (ot *OperationTracer) TraceStepExecution(ctx context.Context, operationID, stepID string) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, stepID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStepCompletion closes out a step span and records its metrics
func (ot *OperationTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	status := string(StepStatusCompleted)
	if err != nil {
		status = string(StepStatusFailed)
	}

	span.SetAttributes(
		attribute.String("step.status", status),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
	ot.metrics.RecordStep(ctx, stepID, status, duration.Seconds())

	if err != nil {
		span.RecordError(err, trace.WithAttributes(attribute.String("step.id", stepID)))
		span.SetStatus(codes.Error, "step execution failed")
		return
	}
	span.SetStatus(codes.Ok, "step completed")
}

// RecordOperationCompletion sets the final status on the run span
func (ot *OperationTracer) RecordOperationCompletion(span trace.Span, state *OperationState) {
	status := state.GetStatus()
	span.SetAttributes(
		attribute.String("operation.status", string(status)),
		attribute.Float64("operation.duration_seconds", state.Duration().Seconds()),
	)
	if status == OperationStatusCompleted {
		span.SetStatus(codes.Ok, "operation completed")
		return
	}
	if state.Error != nil {
		span.RecordError(state.Error)
	}
	span.SetStatus(codes.Error, "operation "+string(status))
}
