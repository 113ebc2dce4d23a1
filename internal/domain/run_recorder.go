package domain

//go:generate mockgen -source=run_recorder.go -destination=run_recorder_mock.go -package=domain

import (
	"context"
	"time"
)

// OptimizerRunRecord summarizes one convert or preview run for analytics.
type OptimizerRunRecord struct {
	RunID            string
	StoreID          string
	Mode             string
	RecordedAt       time.Time
	AssignmentCount  int
	ErrorCount       int
	WarningsByCode   map[string]int
	MissingCount     int
	AutoRepaired     bool
	Rejected         bool
	UsedRepairOutput bool
	Duration         time.Duration
}

type RunRecorder interface {
	RecordRun(ctx context.Context, record OptimizerRunRecord) error
	Flush(ctx context.Context) error
	Close() error
}
