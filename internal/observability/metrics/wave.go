package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const waveMeterName = "wave.notifier"

type WaveMetrics struct {
	evaluations   metric.Int64Counter
	calmWindows   metric.Int64Counter
	notifications metric.Int64Counter
}

func NewWaveMetrics() (*WaveMetrics, error) {
	meter := otel.Meter(waveMeterName)

	evaluations, err := meter.Int64Counter(
		"wave_evaluations_total",
		metric.WithDescription("Total number of store day evaluations"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return nil, err
	}

	calmWindows, err := meter.Int64Counter(
		"wave_calm_windows_total",
		metric.WithDescription("Calm windows found per position"),
		metric.WithUnit("{window}"),
	)
	if err != nil {
		return nil, err
	}

	notifications, err := meter.Int64Counter(
		"wave_notifications_total",
		metric.WithDescription("Calm window notifications by outcome"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	return &WaveMetrics{
		evaluations:   evaluations,
		calmWindows:   calmWindows,
		notifications: notifications,
	}, nil
}

func (m *WaveMetrics) RecordEvaluation(ctx context.Context, outcome string) {
	m.evaluations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *WaveMetrics) RecordCalmWindows(ctx context.Context, positionID string, count int) {
	m.calmWindows.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("position_id", positionID),
	))
}

// RecordNotification counts one position outcome: scheduled, duplicate,
// none or failed.
func (m *WaveMetrics) RecordNotification(ctx context.Context, positionID, outcome string) {
	m.notifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("position_id", positionID),
		attribute.String("outcome", outcome),
	))
}
