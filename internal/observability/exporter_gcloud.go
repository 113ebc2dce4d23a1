//go:build gcloud

package observability

import (
	"context"
	"errors"

	mexporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	texporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var errProjectIDRequired = errors.New("GCP project id is required for cloud exporters")

func newSpanExporter(_ context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	if cfg.GCPProjectID == "" {
		return nil, errProjectIDRequired
	}
	return texporter.New(texporter.WithProjectID(cfg.GCPProjectID))
}

func newMetricReader(_ context.Context, cfg Config) (sdkmetric.Reader, error) {
	if cfg.GCPProjectID == "" {
		return nil, errProjectIDRequired
	}
	exp, err := mexporter.New(mexporter.WithProjectID(cfg.GCPProjectID))
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}
