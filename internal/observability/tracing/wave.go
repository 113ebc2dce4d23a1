package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const waveTracerName = "github.com/KasumiMercury/primind-floor-operations/internal/service/wavenotify"

func StartWaveEvaluationSpan(ctx context.Context, storeID string, day time.Time) (context.Context, trace.Span) {
	return otel.Tracer(waveTracerName).Start(ctx, "wave.evaluate",
		trace.WithAttributes(
			attribute.String("store_id", storeID),
			attribute.String("wave.day", day.Format(time.DateOnly)),
		),
	)
}

func RecordWaveEvaluationResult(span trace.Span, windowCount, scheduledCount int, err error) {
	span.SetAttributes(
		attribute.Int("wave.window_count", windowCount),
		attribute.Int("wave.scheduled_count", scheduledCount),
	)
	endWithError(span, err)
}
