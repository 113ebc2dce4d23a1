//go:build !gcloud

package runrecorder

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
)

func TestRunPoint(t *testing.T) {
	point := runPoint(domain.OptimizerRunRecord{
		RunID:           "run-1",
		Mode:            "preview",
		RecordedAt:      time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC),
		AssignmentCount: 3,
		WarningsByCode:  map[string]int{"DUP_TABLE": 2},
		Rejected:        true,
		Duration:        1500 * time.Millisecond,
	})

	line := write.PointToLineProtocol(point, time.Millisecond)
	for _, want := range []string{
		"optimizer_run,mode=preview,outcome=rejected,store_id=adhoc ",
		"assignment_count=3i",
		"warnings_DUP_TABLE=2i",
		"duration_ms=1500i",
		`run_id="run-1"`,
		" 1741975200000",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q lacks %q", line, want)
		}
	}
}

func TestNewRecorder_FallsBackToNoop(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{
			name: "disabled",
			cfg:  &Config{Disabled: true, InfluxDBToken: "token", InfluxDBOrg: "org"},
		},
		{
			name: "missing credentials",
			cfg:  &Config{InfluxDBURL: "http://localhost:8086"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := NewRecorder(context.Background(), tt.cfg)
			if err != nil {
				t.Fatalf("NewRecorder() error = %v", err)
			}
			if _, ok := rec.(*noopRecorder); !ok {
				t.Errorf("recorder = %T, want *noopRecorder", rec)
			}
			if err := rec.RecordRun(context.Background(), domain.OptimizerRunRecord{}); err != nil {
				t.Errorf("RecordRun() error = %v", err)
			}
		})
	}
}
