package schedule

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
)

var jst = time.FixedZone("JST", 9*60*60)

func dayAnchor() int64 {
	return time.Date(2025, 5, 10, 0, 0, 0, 0, jst).UnixMilli()
}

func at(hour, minute int) int64 {
	return time.Date(2025, 5, 10, hour, minute, 0, 0, jst).UnixMilli()
}

func TestNormalizer_StartResolution(t *testing.T) {
	n := NewNormalizer(dayAnchor(), jst, nil)

	tests := []struct {
		name   string
		record domain.Record
		want   int64
	}{
		{
			name:   "numeric start wins over clock string",
			record: domain.Record{"id": "r1", "table": "1", "startMs": float64(at(18, 0)), "time": "19:00"},
			want:   at(18, 0),
		},
		{
			name:   "clock string on anchor day",
			record: domain.Record{"id": "r1", "table": "1", "time": "18:30"},
			want:   at(18, 30),
		},
		{
			name:   "clock string in start field",
			record: domain.Record{"id": "r1", "table": "1", "start": "17:45"},
			want:   at(17, 45),
		},
		{
			name:   "iso date",
			record: domain.Record{"id": "r1", "table": "1", "startISO": "2025-05-10T20:15:00+09:00"},
			want:   at(20, 15),
		},
		{
			name:   "local datetime in anchor zone",
			record: domain.Record{"id": "r1", "table": "1", "datetime": "2025-05-10 12:00"},
			want:   at(12, 0),
		},
		{
			name:   "fallback to anchor",
			record: domain.Record{"id": "r1", "table": "1"},
			want:   at(0, 0),
		},
		{
			name:   "snapped to nearest five minutes",
			record: domain.Record{"id": "r1", "table": "1", "time": "18:33"},
			want:   at(18, 35),
		},
		{
			name:   "snapped down",
			record: domain.Record{"id": "r1", "table": "1", "time": "18:32"},
			want:   at(18, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := n.Normalize(tt.record)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if item.StartMs != tt.want {
				t.Errorf("StartMs = %v, want %v", time.UnixMilli(item.StartMs).In(jst), time.UnixMilli(tt.want).In(jst))
			}
		})
	}
}

func TestNormalizer_EndResolution(t *testing.T) {
	courses := []domain.Course{{Name: "omakase", StayMinutes: 150}}
	n := NewNormalizer(dayAnchor(), jst, courses)

	tests := []struct {
		name   string
		record domain.Record
		want   int64
	}{
		{
			name:   "explicit end",
			record: domain.Record{"id": "r1", "table": "1", "time": "18:00", "endMs": float64(at(19, 10)), "durationMinutes": 30},
			want:   at(19, 10),
		},
		{
			name:   "explicit clock end",
			record: domain.Record{"id": "r1", "table": "1", "time": "18:00", "end": "21:00"},
			want:   at(21, 0),
		},
		{
			name:   "duration beats course",
			record: domain.Record{"id": "r1", "table": "1", "time": "18:00", "duration": "45", "course": "omakase"},
			want:   at(18, 45),
		},
		{
			name:   "course stay",
			record: domain.Record{"id": "r1", "table": "1", "time": "18:00", "course": "omakase", "stayMinutes": 60},
			want:   at(20, 30),
		},
		{
			name:   "record stay when course unknown",
			record: domain.Record{"id": "r1", "table": "1", "time": "18:00", "course": "a la carte", "stayMinutes": 60},
			want:   at(19, 0),
		},
		{
			name:   "default stay",
			record: domain.Record{"id": "r1", "table": "1", "time": "18:00"},
			want:   at(20, 0),
		},
		{
			name:   "end before start is clamped",
			record: domain.Record{"id": "r1", "table": "1", "time": "18:00", "end": "17:00"},
			want:   at(18, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := n.Normalize(tt.record)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if item.EndMs != tt.want {
				t.Errorf("EndMs = %v, want %v", time.UnixMilli(item.EndMs).In(jst), time.UnixMilli(tt.want).In(jst))
			}
		})
	}
}

func TestNormalizer_Tables(t *testing.T) {
	n := NewNormalizer(dayAnchor(), jst, nil)

	item, err := n.Normalize(domain.Record{
		"id":       "r1",
		"tables":   []any{"3", float64(4)},
		"table":    "4, 5",
		"tableIds": []any{"3"},
		"tableNo":  6,
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := []string{"3", "4", "5", "6"}
	if !slices.Equal(item.Tables, want) {
		t.Errorf("Tables = %v, want %v", item.Tables, want)
	}
	if item.PrimaryTable() != "3" {
		t.Errorf("PrimaryTable() = %q, want %q", item.PrimaryTable(), "3")
	}
}

func TestNormalizer_Errors(t *testing.T) {
	n := NewNormalizer(dayAnchor(), jst, nil)

	if _, err := n.Normalize(domain.Record{"table": "1"}); !errors.Is(err, ErrMissingID) {
		t.Errorf("Normalize(no id) error = %v, want ErrMissingID", err)
	}
	if _, err := n.Normalize(domain.Record{"id": "r1", "tables": []any{}, "table": " , "}); !errors.Is(err, ErrNoTables) {
		t.Errorf("Normalize(no tables) error = %v, want ErrNoTables", err)
	}
}

func TestNormalizer_Flags(t *testing.T) {
	n := NewNormalizer(dayAnchor(), jst, nil)

	item, err := n.Normalize(domain.Record{
		"id":       "r1",
		"table":    "1",
		"guests":   "4",
		"arrived":  "yes",
		"paid":     "なし",
		"departed": []any{false, "0", 1},
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if item.Guests != 4 {
		t.Errorf("Guests = %d, want 4", item.Guests)
	}
	if !item.Arrived || item.Paid || !item.Departed {
		t.Errorf("flags arrived=%v paid=%v departed=%v, want true false true", item.Arrived, item.Paid, item.Departed)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{name: "nil", in: nil, want: false},
		{name: "true", in: true, want: true},
		{name: "zero", in: float64(0), want: false},
		{name: "one", in: 1, want: true},
		{name: "false string", in: "False", want: false},
		{name: "zero string", in: "0", want: false},
		{name: "no", in: "no", want: false},
		{name: "japanese none", in: "なし", want: false},
		{name: "empty string", in: "  ", want: false},
		{name: "other string", in: "済", want: true},
		{name: "array any true", in: []any{"no", "yes"}, want: true},
		{name: "array all false", in: []any{"no", 0}, want: false},
		{name: "object", in: map[string]any{}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truthy(tt.in); got != tt.want {
				t.Errorf("Truthy(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
