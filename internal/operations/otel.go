package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	TracerName = "salespulse.pipeline"
)

// PipelineMetrics holds the OpenTelemetry instruments of a run
type PipelineMetrics struct {
	StepDuration      metric.Float64Histogram
	StepExecutions    metric.Int64Counter
	RowsIngested      metric.Int64Counter
	MissingCells      metric.Int64Counter
	DuplicateRows     metric.Int64Counter
	DuplicateOrderIDs metric.Int64Counter
	RevenueMismatches metric.Int64Counter
	RowsRemoved       metric.Int64Counter
	FilesWritten      metric.Int64Counter
	TotalRevenue      metric.Float64Gauge
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	if m.StepDuration, err = meter.Float64Histogram("pipeline_step_duration_seconds",
		metric.WithDescription("Duration of pipeline steps"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("step duration histogram: %w", err)
	}
	if m.StepExecutions, err = meter.Int64Counter("pipeline_step_executions_total",
		metric.WithDescription("Pipeline step executions by outcome")); err != nil {
		return nil, fmt.Errorf("step executions counter: %w", err)
	}
	if m.RowsIngested, err = meter.Int64Counter("pipeline_rows_ingested_total",
		metric.WithDescription("Rows read from the input file")); err != nil {
		return nil, fmt.Errorf("rows ingested counter: %w", err)
	}
	if m.MissingCells, err = meter.Int64Counter("pipeline_missing_cells_total",
		metric.WithDescription("Empty cells found by the quality checks")); err != nil {
		return nil, fmt.Errorf("missing cells counter: %w", err)
	}
	if m.DuplicateRows, err = meter.Int64Counter("pipeline_duplicate_rows_total",
		metric.WithDescription("Full-row duplicates found by the quality checks")); err != nil {
		return nil, fmt.Errorf("duplicate rows counter: %w", err)
	}
	if m.DuplicateOrderIDs, err = meter.Int64Counter("pipeline_duplicate_order_ids_total",
		metric.WithDescription("Repeated Order_ID occurrences")); err != nil {
		return nil, fmt.Errorf("duplicate ids counter: %w", err)
	}
	if m.RevenueMismatches, err = meter.Int64Counter("pipeline_revenue_mismatches_total",
		metric.WithDescription("Rows whose revenue differs from units x price")); err != nil {
		return nil, fmt.Errorf("mismatch counter: %w", err)
	}
	if m.RowsRemoved, err = meter.Int64Counter("pipeline_rows_removed_total",
		metric.WithDescription("Rows removed by cleaning, by reason")); err != nil {
		return nil, fmt.Errorf("rows removed counter: %w", err)
	}
	if m.FilesWritten, err = meter.Int64Counter("pipeline_files_written_total",
		metric.WithDescription("Output files by write outcome")); err != nil {
		return nil, fmt.Errorf("files written counter: %w", err)
	}
	if m.TotalRevenue, err = meter.Float64Gauge("pipeline_total_revenue",
		metric.WithDescription("Total revenue of the last run")); err != nil {
		return nil, fmt.Errorf("total revenue gauge: %w", err)
	}
	return m, nil
}

// Telemetry instruments step execution with spans and metrics
type Telemetry struct {
	tracer  trace.Tracer
	metrics *PipelineMetrics
}

// NewTelemetry creates step instrumentation. Nil tracer or meter fall back to no-op implementations.
func NewTelemetry(tracer trace.Tracer, meter metric.Meter) (*Telemetry, error) {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(TracerName)
	}
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(TracerName)
	}
	metrics, err := NewPipelineMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	return &Telemetry{tracer: tracer, metrics: metrics}, nil
}

// NoopTelemetry returns instrumentation that records nothing
func NoopTelemetry() *Telemetry {
	return &Telemetry{
		tracer: tracenoop.NewTracerProvider().Tracer(TracerName),
		metrics: &PipelineMetrics{
			StepDuration:      metricnoop.Float64Histogram{},
			StepExecutions:    metricnoop.Int64Counter{},
			RowsIngested:      metricnoop.Int64Counter{},
			MissingCells:      metricnoop.Int64Counter{},
			DuplicateRows:     metricnoop.Int64Counter{},
			DuplicateOrderIDs: metricnoop.Int64Counter{},
			RevenueMismatches: metricnoop.Int64Counter{},
			RowsRemoved:       metricnoop.Int64Counter{},
			FilesWritten:      metricnoop.Int64Counter{},
			TotalRevenue:      metricnoop.Float64Gauge{},
		},
	}
}

// TraceRun creates the root span of a run
func (t *Telemetry) TraceRun(ctx context.Context, state *RunState) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", state.ID),
			attribute.String("run.input", state.InputPath),
		),
	)
}

// TraceStep creates a span for one step
func (t *Telemetry) TraceStep(ctx context.Context, state *RunState, step Step) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, step.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", state.ID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// EndStep records the outcome of a step on its span and in the step metrics
func (t *Telemetry) EndStep(ctx context.Context, span trace.Span, step Step, duration time.Duration, err error) {
	status := string(StepStatusCompleted)
	if err != nil {
		status = string(StepStatusFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))
	span.End()

	attrs := metric.WithAttributes(
		attribute.String("step", step.ID()),
		attribute.String("status", status),
	)
	t.metrics.StepDuration.Record(ctx, duration.Seconds(), attrs)
	t.metrics.StepExecutions.Add(ctx, 1, attrs)
}

// RecordOutputs records the data-quality counts a completed step produced
func (t *Telemetry) RecordOutputs(ctx context.Context, stepID string, state *RunState) {
	m := t.metrics
	switch stepID {
	case StepIDIngest:
		if state.Raw != nil {
			m.RowsIngested.Add(ctx, int64(state.Raw.Len()))
		}
	case StepIDValidate:
		if q := state.Quality; q != nil {
			m.MissingCells.Add(ctx, int64(q.MissingCells()))
			m.DuplicateRows.Add(ctx, int64(q.Duplicates.Rows))
			m.DuplicateOrderIDs.Add(ctx, int64(q.Duplicates.OrderIDs))
			m.RevenueMismatches.Add(ctx, int64(len(q.Mismatches)))
		}
	case StepIDClean:
		if s := state.CleanSummary; s != nil {
			m.RowsRemoved.Add(ctx, int64(s.MissingRemoved), metric.WithAttributes(attribute.String("reason", "missing")))
			m.RowsRemoved.Add(ctx, int64(s.DuplicatesRemoved), metric.WithAttributes(attribute.String("reason", "duplicate")))
			m.RowsRemoved.Add(ctx, int64(s.MismatchesExcluded), metric.WithAttributes(attribute.String("reason", "mismatch")))
		}
	case StepIDAggregate:
		if k := state.KPIs; k != nil {
			m.TotalRevenue.Record(ctx, k.TotalRevenue.InexactFloat64())
		}
	case StepIDExport:
		if e := state.Export; e != nil {
			m.FilesWritten.Add(ctx, int64(len(e.Written)), metric.WithAttributes(attribute.String("status", "written")))
			m.FilesWritten.Add(ctx, int64(len(e.Failed)), metric.WithAttributes(attribute.String("status", "failed")))
		}
	}
}
