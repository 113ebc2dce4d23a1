package handler

import (
	"encoding/json"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/service/wavenotify"
	"github.com/KasumiMercury/primind-floor-operations/internal/timemath"
	"github.com/KasumiMercury/primind-floor-operations/internal/wave"
)

var kitchenCourses = []domain.Course{{
	Name: "omakase",
	Tasks: []domain.CourseTask{
		{Label: "serve", OffsetMinutes: 0, PositionID: "kitchen"},
		{Label: "dessert", OffsetMinutes: 60, PositionID: "pastry"},
	},
}}

func newWaveRouter(store domain.FloorRepository, now time.Time) *gin.Engine {
	svc := wavenotify.NewService(store, nil, nil, nil, wavenotify.Config{
		Location: time.UTC,
		Defaults: wavenotify.DefaultSettings,
	})
	h := NewWaveHandler(svc, time.UTC)
	h.now = func() time.Time { return now }

	r := gin.New()
	RegisterRoutes(r, Handlers{Wave: h})
	return r
}

func ptr[T any](v T) *T { return &v }

func TestWaveHandler_CalmWindows(t *testing.T) {
	m := timemath.MinuteMs
	open := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC).UnixMilli()

	tests := []struct {
		name          string
		body          any
		wantStatus    int
		wantTaskCount int
		wantWindows   []wave.CalmWindow
		wantNotifyAt  int64
	}{
		{
			name: "from tasks",
			body: CalmWindowsRequest{
				Tasks: []wave.Task{
					{TimeMs: 0, Guests: 4, PositionID: "kitchen", Table: "1"},
					{TimeMs: 0, Guests: 2, PositionID: "kitchen", Table: "2"},
					{TimeMs: 60 * m, Guests: 3, PositionID: "kitchen", Table: "3"},
				},
				PositionID:         "kitchen",
				Threshold:          5,
				NotifyDelayMinutes: ptr(5),
				NowMs:              ptr(int64(0)),
			},
			wantStatus:    http.StatusOK,
			wantTaskCount: 3,
			wantWindows:   []wave.CalmWindow{{Start: 5 * m, End: 65 * m}},
			wantNotifyAt:  10 * m,
		},
		{
			name: "from records",
			body: map[string]any{
				"records": []map[string]any{
					{"id": "R1", "time": "18:00", "guests": 4, "table": "1", "course": "omakase"},
					{"id": "R2", "time": "18:00", "guests": 2, "table": "2", "course": "omakase"},
					{"id": "R3", "time": "19:00", "guests": 3, "table": "3", "course": "omakase"},
				},
				"courses":    kitchenCourses,
				"day":        "2025-03-14",
				"positionId": "kitchen",
				"threshold":  5,
				"nowMs":      open - 60*m,
			},
			wantStatus:    http.StatusOK,
			wantTaskCount: 3,
			wantWindows:   []wave.CalmWindow{{Start: open + 5*m, End: open + 65*m}},
			wantNotifyAt:  open + 10*m,
		},
		{
			name:       "missing position",
			body:       CalmWindowsRequest{Threshold: 5},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid day",
			body:       CalmWindowsRequest{PositionID: "kitchen", Day: "tomorrow"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bucket overflows",
			body:       `{"positionId":"kitchen","startMs":0,"endMs":3600000,"bucketMinutes":307445734561825}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bucket above a day",
			body:       CalmWindowsRequest{PositionID: "kitchen", StartMs: 0, EndMs: 60 * m, BucketMinutes: 24*60 + 1},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative bucket",
			body:       CalmWindowsRequest{PositionID: "kitchen", StartMs: 0, EndMs: 60 * m, BucketMinutes: -5},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "smoothing radius",
			body:       CalmWindowsRequest{PositionID: "kitchen", StartMs: 0, EndMs: 60 * m, SmoothRadius: 13},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "ten year range",
			body:       CalmWindowsRequest{PositionID: "kitchen", StartMs: 0, EndMs: 10 * 365 * 24 * 60 * m},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "tasks spread over three days",
			body: CalmWindowsRequest{
				PositionID: "kitchen",
				Tasks: []wave.Task{
					{TimeMs: 0, Guests: 2, PositionID: "kitchen"},
					{TimeMs: 72 * 60 * m, Guests: 2, PositionID: "kitchen"},
				},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:         "48 hour range",
			body:         CalmWindowsRequest{PositionID: "kitchen", StartMs: 0, EndMs: 48 * 60 * m, BucketMinutes: 60, NowMs: ptr(int64(0))},
			wantStatus:   http.StatusOK,
			wantWindows:  []wave.CalmWindow{{Start: 0, End: 48 * 60 * m}},
			wantNotifyAt: 5 * m,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newWaveRouter(nil, time.UnixMilli(0).UTC())
			w := doJSON(t, r, http.MethodPost, "/api/v1/wave/calm-windows", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp CalmWindowsResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if resp.TaskCount != tt.wantTaskCount {
				t.Errorf("taskCount = %d, want %d", resp.TaskCount, tt.wantTaskCount)
			}
			if !reflect.DeepEqual(resp.Windows, tt.wantWindows) {
				t.Errorf("windows = %v, want %v", resp.Windows, tt.wantWindows)
			}
			if resp.NotifyAtMs != tt.wantNotifyAt {
				t.Errorf("notifyAtMs = %d, want %d", resp.NotifyAtMs, tt.wantNotifyAt)
			}
		})
	}
}

func TestWaveHandler_Notify(t *testing.T) {
	now := time.Date(2025, 3, 14, 17, 0, 0, 0, time.UTC)

	t.Run("missing store", func(t *testing.T) {
		r := newWaveRouter(nil, now)
		w := doJSON(t, r, http.MethodPost, "/api/v1/wave/notify", NotifyRequest{})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := domain.NewMockFloorRepository(ctrl)
		store.EXPECT().GetReservations(gomock.Any(), "ghost", gomock.Any()).Return(nil, domain.ErrStoreNotFound)

		r := newWaveRouter(store, now)
		w := doJSON(t, r, http.MethodPost, "/api/v1/wave/notify", NotifyRequest{StoreID: "ghost"})
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404: %s", w.Code, w.Body.String())
		}
	})

	t.Run("queue disabled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := domain.NewMockFloorRepository(ctrl)
		store.EXPECT().GetReservations(gomock.Any(), "store-1", gomock.Any()).Return([]domain.Record{
			{"id": "R1", "time": "18:00", "guests": 4, "table": "1", "course": "omakase"},
			{"id": "R2", "time": "18:00", "guests": 2, "table": "2", "course": "omakase"},
			{"id": "R3", "time": "19:00", "guests": 3, "table": "3", "course": "omakase"},
		}, nil)
		store.EXPECT().GetCourses(gomock.Any(), "store-1").Return(kitchenCourses, nil)
		store.EXPECT().GetWaveSettings(gomock.Any(), "store-1").Return(&domain.WaveSettings{PositionIDs: []string{"kitchen"}}, nil)

		r := newWaveRouter(store, now)
		w := doJSON(t, r, http.MethodPost, "/api/v1/wave/notify", NotifyRequest{StoreID: "store-1", Day: "2025-03-14"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}

		var result wavenotify.Result
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if result.StoreID != "store-1" || len(result.Positions) != 1 {
			t.Fatalf("result = %+v", result)
		}
		pos := result.Positions[0]
		if pos.Outcome != wavenotify.OutcomeDisabled || pos.Window == nil {
			t.Errorf("position = %+v, want a disabled notification", pos)
		}
		if result.ScheduledCount != 0 {
			t.Errorf("scheduledCount = %d, want 0", result.ScheduledCount)
		}
	})
}
