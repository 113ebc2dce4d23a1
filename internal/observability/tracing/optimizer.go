package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const optimizerTracerName = "github.com/KasumiMercury/primind-floor-operations/internal/service/optimizer"

func OptimizerTracer() trace.Tracer {
	return otel.Tracer(optimizerTracerName)
}

func StartOptimizerRunSpan(ctx context.Context, mode, storeID string) (context.Context, trace.Span) {
	return OptimizerTracer().Start(ctx, "optimizer.run",
		trace.WithAttributes(
			attribute.String("optimizer.mode", mode),
			attribute.String("store_id", storeID),
		),
	)
}

func StartRepairSpan(ctx context.Context, assignmentCount int) (context.Context, trace.Span) {
	return OptimizerTracer().Start(ctx, "optimizer.repair",
		trace.WithAttributes(
			attribute.Int("repair.assignment_count", assignmentCount),
		),
	)
}

func StartGeneratorSpan(ctx context.Context, provider, model string) (context.Context, trace.Span) {
	return OptimizerTracer().Start(ctx, "optimizer.generator."+provider,
		trace.WithAttributes(
			attribute.String("generator.provider", provider),
			attribute.String("generator.model", model),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func StartRedisOperationSpan(ctx context.Context, operation, key string) (context.Context, trace.Span) {
	return OptimizerTracer().Start(ctx, "floor.redis."+operation,
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", operation),
			attribute.String("db.key", key),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordGeneratorResult(span trace.Span, responseBytes int, err error) {
	span.SetAttributes(attribute.Int("generator.response_bytes", responseBytes))
	endWithError(span, err)
}

func RecordRepairResult(span trace.Span, warningCount int, autoRepaired bool) {
	span.SetAttributes(
		attribute.Int("repair.warning_count", warningCount),
		attribute.Bool("repair.auto_repaired", autoRepaired),
	)
}

func RecordOptimizerRunResult(span trace.Span, assignmentCount, errorCount, warningCount int, err error) {
	span.SetAttributes(
		attribute.Int("optimizer.assignment_count", assignmentCount),
		attribute.Int("optimizer.error_count", errorCount),
		attribute.Int("optimizer.warning_count", warningCount),
	)
	endWithError(span, err)
}
