//go:build gcloud

package runrecorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
)

type bigQueryRecord struct {
	RecordedAt       time.Time `bigquery:"recorded_at"`
	RunID            string    `bigquery:"run_id"`
	StoreID          string    `bigquery:"store_id"`
	Mode             string    `bigquery:"mode"`
	AssignmentCount  int64     `bigquery:"assignment_count"`
	ErrorCount       int64     `bigquery:"error_count"`
	WarningCount     int64     `bigquery:"warning_count"`
	DupTable         int64     `bigquery:"dup_table_warnings"`
	SmallPartySplit  int64     `bigquery:"small_party_split_warnings"`
	OverAllocation   int64     `bigquery:"over_allocation_warnings"`
	PolicyOptimized  int64     `bigquery:"policy_optimized_warnings"`
	MissingCount     int64     `bigquery:"missing_count"`
	AutoRepaired     bool      `bigquery:"auto_repaired"`
	Rejected         bool      `bigquery:"rejected"`
	UsedRepairOutput bool      `bigquery:"used_repair_output"`
	DurationMs       int64     `bigquery:"duration_ms"`
}

type bigQueryRecorder struct {
	client   *bigquery.Client
	inserter *bigquery.Inserter
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.RunRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "optimizer run recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.BigQueryProjectID == "" {
		slog.WarnContext(ctx, "BigQuery project ID not configured, optimizer run recording disabled")
		return NewNoopRecorder(), nil
	}

	client, err := bigquery.NewClient(ctx, cfg.BigQueryProjectID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create BigQuery client, optimizer run recording disabled",
			slog.String("error", err.Error()),
			slog.String("project_id", cfg.BigQueryProjectID),
		)
		return NewNoopRecorder(), nil
	}

	inserter := client.Dataset(cfg.BigQueryDataset).Table(cfg.BigQueryTable).Inserter()

	slog.InfoContext(ctx, "optimizer run recorder initialized",
		slog.String("type", "bigquery"),
		slog.String("project_id", cfg.BigQueryProjectID),
		slog.String("dataset", cfg.BigQueryDataset),
		slog.String("table", cfg.BigQueryTable),
	)

	return &bigQueryRecorder{
		client:   client,
		inserter: inserter,
	}, nil
}

func (r *bigQueryRecorder) RecordRun(ctx context.Context, record domain.OptimizerRunRecord) error {
	recordedAt := record.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	total := 0
	for _, n := range record.WarningsByCode {
		total += n
	}

	row := &bigQueryRecord{
		RecordedAt:       recordedAt,
		RunID:            record.RunID,
		StoreID:          record.StoreID,
		Mode:             record.Mode,
		AssignmentCount:  int64(record.AssignmentCount),
		ErrorCount:       int64(record.ErrorCount),
		WarningCount:     int64(total),
		DupTable:         int64(record.WarningsByCode["DUP_TABLE"]),
		SmallPartySplit:  int64(record.WarningsByCode["SMALL_PARTY_SPLIT"]),
		OverAllocation:   int64(record.WarningsByCode["OVER_ALLOCATION"]),
		PolicyOptimized:  int64(record.WarningsByCode["POLICY_OPTIMIZED"]),
		MissingCount:     int64(record.MissingCount),
		AutoRepaired:     record.AutoRepaired,
		Rejected:         record.Rejected,
		UsedRepairOutput: record.UsedRepairOutput,
		DurationMs:       record.Duration.Milliseconds(),
	}

	if err := r.inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("insert optimizer run %s: %w", record.RunID, err)
	}
	return nil
}

func (r *bigQueryRecorder) Flush(_ context.Context) error {
	return nil
}

func (r *bigQueryRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
