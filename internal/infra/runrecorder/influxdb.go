//go:build !gcloud

package runrecorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
)

const runMeasurement = "optimizer_run"

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.RunRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "optimizer run recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, optimizer run recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket)

	slog.InfoContext(ctx, "optimizer run recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
	}, nil
}

func (r *influxDBRecorder) RecordRun(ctx context.Context, record domain.OptimizerRunRecord) error {
	if err := r.writeAPI.WritePoint(ctx, runPoint(record)); err != nil {
		return fmt.Errorf("write optimizer run %s: %w", record.RunID, err)
	}
	return nil
}

func (r *influxDBRecorder) Flush(ctx context.Context) error {
	return r.writeAPI.Flush(ctx)
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}

// runPoint tags by store, mode and outcome. Warning counts become one field
// per code so dashboards can chart them without a join.
func runPoint(record domain.OptimizerRunRecord) *write.Point {
	storeID := record.StoreID
	if storeID == "" {
		storeID = "adhoc"
	}
	outcome := "ok"
	if record.Rejected {
		outcome = "rejected"
	}

	fields := map[string]any{
		"run_id":             record.RunID,
		"assignment_count":   record.AssignmentCount,
		"error_count":        record.ErrorCount,
		"missing_count":      record.MissingCount,
		"auto_repaired":      record.AutoRepaired,
		"used_repair_output": record.UsedRepairOutput,
		"duration_ms":        record.Duration.Milliseconds(),
	}
	for code, n := range record.WarningsByCode {
		fields["warnings_"+code] = n
	}

	at := record.RecordedAt
	if at.IsZero() {
		at = time.Now()
	}

	return influxdb2.NewPoint(
		runMeasurement,
		map[string]string{
			"store_id": storeID,
			"mode":     record.Mode,
			"outcome":  outcome,
		},
		fields,
		at,
	)
}
