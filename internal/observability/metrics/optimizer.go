package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	optimizerMeterName = "optimizer.service"
)

type OptimizerMetrics struct {
	runs              metric.Int64Counter
	warnings          metric.Int64Counter
	parseErrors       metric.Int64Counter
	generatorDuration metric.Float64Histogram
	repairDuration    metric.Float64Histogram
}

func NewOptimizerMetrics() (*OptimizerMetrics, error) {
	meter := otel.Meter(optimizerMeterName)

	runs, err := meter.Int64Counter(
		"optimizer_runs_total",
		metric.WithDescription("Total number of optimizer runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	warnings, err := meter.Int64Counter(
		"optimizer_warnings_total",
		metric.WithDescription("Warnings emitted by the deterministic post-pass"),
		metric.WithUnit("{warning}"),
	)
	if err != nil {
		return nil, err
	}

	parseErrors, err := meter.Int64Counter(
		"optimizer_parse_errors_total",
		metric.WithDescription("Rows rejected while parsing plans"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, err
	}

	generatorDuration, err := meter.Float64Histogram(
		"optimizer_generator_duration_seconds",
		metric.WithDescription("Time spent waiting for the text generator"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.25, 0.5, 1, 2.5, 5, 10, 15, 20, 25, 30,
		),
	)
	if err != nil {
		return nil, err
	}

	repairDuration, err := meter.Float64Histogram(
		"optimizer_repair_duration_seconds",
		metric.WithDescription("Deterministic post-pass duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1,
		),
	)
	if err != nil {
		return nil, err
	}

	return &OptimizerMetrics{
		runs:              runs,
		warnings:          warnings,
		parseErrors:       parseErrors,
		generatorDuration: generatorDuration,
		repairDuration:    repairDuration,
	}, nil
}

// RecordRun counts one run. outcome is ok, rejected or failed.
func (m *OptimizerMetrics) RecordRun(ctx context.Context, mode, outcome string) {
	m.runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	))
}

func (m *OptimizerMetrics) RecordWarning(ctx context.Context, code string) {
	m.warnings.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
	))
}

func (m *OptimizerMetrics) RecordParseErrors(ctx context.Context, mode string, count int) {
	if count == 0 {
		return
	}
	m.parseErrors.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("mode", mode),
	))
}

// RecordGeneratorDuration records one generator call. pass is generate or repair.
func (m *OptimizerMetrics) RecordGeneratorDuration(ctx context.Context, pass, outcome string, duration time.Duration) {
	m.generatorDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("pass", pass),
		attribute.String("outcome", outcome),
	))
}

func (m *OptimizerMetrics) RecordRepairDuration(ctx context.Context, duration time.Duration) {
	m.repairDuration.Record(ctx, duration.Seconds())
}
