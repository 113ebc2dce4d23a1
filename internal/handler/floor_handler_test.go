package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/schedule"
)

func newFloorRouter(store domain.FloorRepository) *gin.Engine {
	r := gin.New()
	RegisterRoutes(r, Handlers{Floor: NewFloorHandler(store, time.UTC)})
	return r
}

func TestFloorHandler_PutReservation(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockFloorRepository(ctrl)
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	store.EXPECT().SaveReservation(gomock.Any(), "store-1", gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, got time.Time, rec domain.Record) error {
			if !got.Equal(day) {
				t.Errorf("day = %v, want %v", got, day)
			}
			if rec["id"] != "R1" {
				t.Errorf("record id = %v", rec["id"])
			}
			if n, ok := rec["startMs"].(json.Number); !ok || n.String() != "1741975200000" {
				t.Errorf("startMs = %#v, want json.Number", rec["startMs"])
			}
			return nil
		},
	)

	r := newFloorRouter(store)
	w := doJSON(t, r, http.MethodPut, "/api/v1/stores/store-1/days/2025-03-14/reservations",
		`{"id":"R1","startMs":1741975200000,"guests":2,"tables":["5"]}`)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204: %s", w.Code, w.Body.String())
	}
}

func TestFloorHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		setup      func(store *domain.MockFloorRepository)
		wantStatus int
		wantError  string
	}{
		{
			name:       "invalid day",
			method:     http.MethodGet,
			path:       "/api/v1/stores/store-1/days/14-03-2025/reservations",
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:   "unknown store",
			method: http.MethodGet,
			path:   "/api/v1/stores/ghost/tables",
			setup: func(store *domain.MockFloorRepository) {
				store.EXPECT().GetTables(gomock.Any(), "ghost").Return(nil, domain.ErrStoreNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
		{
			name:       "table without id",
			method:     http.MethodPut,
			path:       "/api/v1/stores/store-1/tables",
			body:       []domain.Table{{ID: "", Capacity: 4}},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "malformed joinable",
			method:     http.MethodPut,
			path:       "/api/v1/stores/store-1/policy",
			body:       domain.Policy{Joinables: []domain.Joinable{{Max: 6}}},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "negative wave settings",
			method:     http.MethodPut,
			path:       "/api/v1/stores/store-1/wave-settings",
			body:       domain.WaveSettings{Threshold: -1},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "bucket above a day",
			method:     http.MethodPut,
			path:       "/api/v1/stores/store-1/wave-settings",
			body:       domain.WaveSettings{BucketMinutes: 24*60 + 1},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:   "storage failure",
			method: http.MethodGet,
			path:   "/api/v1/stores/store-1/courses",
			setup: func(store *domain.MockFloorRepository) {
				store.EXPECT().GetCourses(gomock.Any(), "store-1").Return(nil, errors.New("connection refused"))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := domain.NewMockFloorRepository(ctrl)
			if tt.setup != nil {
				tt.setup(store)
			}

			w := doJSON(t, newFloorRouter(store), tt.method, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
		})
	}
}

func TestFloorHandler_EmptyDocuments(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockFloorRepository(ctrl)
	store.EXPECT().GetReservations(gomock.Any(), "store-1", gomock.Any()).Return(nil, nil)
	store.EXPECT().GetPolicy(gomock.Any(), "store-1").Return(nil, nil)

	r := newFloorRouter(store)

	w := doJSON(t, r, http.MethodGet, "/api/v1/stores/store-1/days/2025-03-14/reservations", nil)
	if w.Code != http.StatusOK || w.Body.String() != `{"reservations":[]}` {
		t.Errorf("reservations: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/stores/store-1/policy", nil)
	if w.Code != http.StatusOK || w.Body.String() != `{"joinables":[]}` {
		t.Errorf("policy: status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestFloorHandler_PutWaveSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockFloorRepository(ctrl)
	store.EXPECT().SaveWaveSettings(gomock.Any(), "store-1", &domain.WaveSettings{
		PositionIDs:        []string{"kitchen"},
		Threshold:          12,
		NotifyDelayMinutes: 0,
	}).Return(nil)

	w := doJSON(t, newFloorRouter(store), http.MethodPut, "/api/v1/stores/store-1/wave-settings",
		`{"positionIds":["kitchen"],"threshold":12}`)
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204: %s", w.Code, w.Body.String())
	}
}

func TestScheduleHandler_Conflicts(t *testing.T) {
	r := gin.New()
	RegisterRoutes(r, Handlers{Schedule: NewScheduleHandler(time.UTC)})

	w := doJSON(t, r, http.MethodPost, "/api/v1/schedule/conflicts", map[string]any{
		"day": "2025-03-14",
		"records": []map[string]any{
			{"id": "R1", "time": "18:00", "guests": 2, "table": "5"},
			{"id": "R2", "time": "19:00", "guests": 4, "table": "5"},
			{"id": "R3", "time": "18:30", "guests": 2, "table": "6", "departed": true},
			{"id": "R4", "time": "18:30", "guests": 2, "table": "6"},
			{"id": "R5", "time": "20:00"},
		},
		"freeDeparted": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var sel schedule.Selection
	if err := json.Unmarshal(w.Body.Bytes(), &sel); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	status := make(map[string]schedule.Status)
	for _, it := range sel.Items {
		status[it.ID] = it.Status
	}
	want := map[string]schedule.Status{
		"R1": schedule.StatusWarn,
		"R2": schedule.StatusWarn,
		"R3": schedule.StatusNormal,
		"R4": schedule.StatusNormal,
	}
	for id, s := range want {
		if status[id] != s {
			t.Errorf("%s status = %q, want %q", id, status[id], s)
		}
	}
	if len(sel.Skipped) != 1 || sel.Skipped[0].ID != "R5" || sel.Skipped[0].Reason != "no_tables" {
		t.Errorf("skipped = %+v", sel.Skipped)
	}
}

func TestScheduleHandler_EmptyRecords(t *testing.T) {
	r := gin.New()
	RegisterRoutes(r, Handlers{Schedule: NewScheduleHandler(time.UTC)})

	w := doJSON(t, r, http.MethodPost, "/api/v1/schedule/conflicts", map[string]any{"records": []any{}})
	if w.Code != http.StatusOK || w.Body.String() != `{"items":[]}` {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}
