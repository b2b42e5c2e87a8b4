package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ecomcli/internal/config"
	"ecomcli/internal/infrastructure"
	"ecomcli/pkg/contracts/domain"
)

const (
	TracerName = "ecomcli.analysis"
)

// AnalysisTracer provides OpenTelemetry instrumentation for analysis runs
type AnalysisTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.AnalysisMetrics
}

// NewAnalysisTracer creates a tracer that records into metrics. A nil
// metrics value records spans only.
func NewAnalysisTracer(metrics *infrastructure.AnalysisMetrics) *AnalysisTracer {
	return &AnalysisTracer{
		tracer:  otel.Tracer(TracerName),
		metrics: metrics,
	}
}

// TraceRun creates a span for a whole analysis run
func (at *AnalysisTracer) TraceRun(ctx context.Context, runID string, cfg config.AnalysisConfig) (context.Context, trace.Span) {
	return at.tracer.Start(ctx, "analysis.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("analysis.run_id", runID),
			attribute.String("analysis.current", cfg.Current.String()),
			attribute.String("analysis.previous", cfg.Previous.String()),
			attribute.String("analysis.status_filter", cfg.StatusFilter),
		),
	)
}

// TraceStage runs fn inside a child span named after stage and records its
// duration
func (at *AnalysisTracer) TraceStage(ctx context.Context, stage string, fn func(ctx context.Context) error) error {
	ctx, span := at.tracer.Start(ctx, fmt.Sprintf("analysis.stage.%s", stage),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("stage.name", stage)),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	at.metrics.RecordStage(ctx, stage, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// RecordBuild records fact table statistics on the current span and the
// counters
func (at *AnalysisTracer) RecordBuild(ctx context.Context, stats domain.FactBuildStats) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("facts.items_in", stats.ItemsIn),
		attribute.Int("facts.rows_out", stats.RowsOut),
		attribute.Int("facts.dropped_no_order", stats.DroppedNoOrder),
		attribute.Int("facts.discarded_reviews", stats.DiscardedReviews),
	)

	if at.metrics == nil {
		return
	}
	at.metrics.FactRows.Record(ctx, int64(stats.RowsOut))
	if stats.DroppedNoOrder > 0 {
		at.metrics.DroppedItems.Add(ctx, int64(stats.DroppedNoOrder))
	}
	if stats.DiscardedReviews > 0 {
		at.metrics.DiscardedReviews.Add(ctx, int64(stats.DiscardedReviews))
	}
}

// RecordCompletion ends the run span and records the run metrics
func (at *AnalysisTracer) RecordCompletion(ctx context.Context, span trace.Span, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("analysis.duration_seconds", duration.Seconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "analysis completed")
	}
	at.metrics.RecordRun(ctx, duration, err)
	span.End()
}
