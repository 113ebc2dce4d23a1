//go:build !gcloud

package observability

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporters are enabled only when an OTLP endpoint is configured; the
// exporters read OTEL_EXPORTER_OTLP_* themselves.
func otlpEnabled() bool {
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

func newSpanExporter(ctx context.Context, _ Config) (sdktrace.SpanExporter, error) {
	if !otlpEnabled() {
		return nil, nil
	}
	return otlptracehttp.New(ctx)
}

func newMetricReader(ctx context.Context, _ Config) (sdkmetric.Reader, error) {
	if !otlpEnabled() {
		return nil, nil
	}
	exp, err := otlpmetrichttp.New(ctx)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}
