package wavenotify

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/infra/taskqueue"
)

var (
	serviceDay  = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	beforeOpen  = time.Date(2025, 3, 14, 17, 0, 0, 0, time.UTC)
	windowStart = time.Date(2025, 3, 14, 18, 5, 0, 0, time.UTC)
)

var testCourses = []domain.Course{{
	Name: "omakase",
	Tasks: []domain.CourseTask{
		{Label: "serve", OffsetMinutes: 0, PositionID: "kitchen"},
		{Label: "dessert", OffsetMinutes: 60, PositionID: "pastry"},
	},
}}

func testRecords() []domain.Record {
	return []domain.Record{
		{"id": "R1", "time": "18:00", "guests": 4, "table": "1", "course": "omakase"},
		{"id": "R2", "time": "18:00", "guests": 2, "table": "2", "course": "omakase"},
		{"id": "R3", "time": "19:00", "guests": 3, "table": "3", "course": "omakase"},
		{"id": "R4", "time": "19:30", "guests": 2},
	}
}

func newTestService(store domain.FloorRepository, ledger domain.NotificationLedger, queue taskqueue.TaskQueue) *Service {
	return NewService(store, ledger, queue, nil, Config{
		Location: time.UTC,
		Defaults: domain.WaveSettings{BucketMinutes: 5, Threshold: 5, MinCalmMinutes: 15, NotifyDelayMinutes: 5},
	})
}

func expectStore(store *domain.MockFloorRepository, settings *domain.WaveSettings) {
	store.EXPECT().GetReservations(gomock.Any(), "store-1", serviceDay).Return(testRecords(), nil)
	store.EXPECT().GetCourses(gomock.Any(), "store-1").Return(testCourses, nil)
	store.EXPECT().GetWaveSettings(gomock.Any(), "store-1").Return(settings, nil)
}

func claimAt(want time.Time, claimed bool) func(context.Context, string, string, time.Time) (bool, error) {
	return func(_ context.Context, _, _ string, got time.Time) (bool, error) {
		if !got.Equal(want) {
			return false, errors.New("unexpected window start " + got.String())
		}
		return claimed, nil
	}
}

func TestService_Evaluate_Schedules(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockFloorRepository(ctrl)
	ledger := domain.NewMockNotificationLedger(ctrl)
	queue := taskqueue.NewMockTaskQueue(ctrl)

	expectStore(store, &domain.WaveSettings{PositionIDs: []string{"kitchen"}})
	ledger.EXPECT().ClaimedWindows(gomock.Any(), "store-1", "kitchen", beforeOpen, serviceDay.Add(48*time.Hour)).Return(nil, nil)
	ledger.EXPECT().ClaimWindow(gomock.Any(), "store-1", "kitchen", gomock.Any()).DoAndReturn(claimAt(windowStart, true))

	var registered *taskqueue.NotificationTask
	queue.EXPECT().RegisterNotification(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, task *taskqueue.NotificationTask) (*taskqueue.TaskResponse, error) {
			registered = task
			return &taskqueue.TaskResponse{Name: task.TaskID}, nil
		},
	)

	svc := newTestService(store, ledger, queue)
	result, err := svc.Evaluate(context.Background(), "store-1", serviceDay, beforeOpen)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if result.Day != "2025-03-14" || result.TaskCount != 3 || result.SkippedRecords != 1 || result.ScheduledCount != 1 {
		t.Errorf("result = %+v", result)
	}
	if len(result.Positions) != 1 {
		t.Fatalf("positions = %+v, want one", result.Positions)
	}
	pos := result.Positions[0]
	wantTaskID := "calm-store-1-kitchen-1741975500000"
	if pos.Outcome != OutcomeScheduled || pos.TaskID != wantTaskID {
		t.Errorf("position = %+v", pos)
	}

	if registered == nil {
		t.Fatal("no task registered")
	}
	if registered.TaskID != wantTaskID {
		t.Errorf("task id = %q, want %q", registered.TaskID, wantTaskID)
	}
	if !registered.ScheduleAt.Equal(windowStart.Add(5 * time.Minute)) {
		t.Errorf("schedule at = %v", registered.ScheduleAt)
	}
	if !registered.WindowEnd.Equal(time.Date(2025, 3, 14, 19, 5, 0, 0, time.UTC)) {
		t.Errorf("window end = %v", registered.WindowEnd)
	}
	if registered.Message != "kitchen: calm from 18:05 to 19:05" {
		t.Errorf("message = %q", registered.Message)
	}
}

func TestService_Evaluate_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*domain.MockNotificationLedger, *taskqueue.MockTaskQueue)
		now         time.Time
		wantOutcome string
		wantFailed  int
	}{
		{
			name: "window already claimed",
			setup: func(l *domain.MockNotificationLedger, _ *taskqueue.MockTaskQueue) {
				l.EXPECT().ClaimWindow(gomock.Any(), "store-1", "kitchen", gomock.Any()).DoAndReturn(claimAt(windowStart, false))
			},
			now:         beforeOpen,
			wantOutcome: OutcomeDuplicate,
		},
		{
			name: "task already registered",
			setup: func(l *domain.MockNotificationLedger, q *taskqueue.MockTaskQueue) {
				l.EXPECT().ClaimWindow(gomock.Any(), "store-1", "kitchen", gomock.Any()).DoAndReturn(claimAt(windowStart, true))
				q.EXPECT().RegisterNotification(gomock.Any(), gomock.Any()).Return(nil, taskqueue.ErrTaskExists)
			},
			now:         beforeOpen,
			wantOutcome: OutcomeDuplicate,
		},
		{
			name: "registration failure releases claim",
			setup: func(l *domain.MockNotificationLedger, q *taskqueue.MockTaskQueue) {
				gomock.InOrder(
					l.EXPECT().ClaimWindow(gomock.Any(), "store-1", "kitchen", gomock.Any()).DoAndReturn(claimAt(windowStart, true)),
					q.EXPECT().RegisterNotification(gomock.Any(), gomock.Any()).Return(nil, errors.New("queue down")),
					l.EXPECT().ReleaseWindow(gomock.Any(), "store-1", "kitchen", gomock.Any()).Return(nil),
				)
			},
			now:         beforeOpen,
			wantOutcome: OutcomeFailed,
			wantFailed:  1,
		},
		{
			name: "ledger failure",
			setup: func(l *domain.MockNotificationLedger, _ *taskqueue.MockTaskQueue) {
				l.EXPECT().ClaimWindow(gomock.Any(), "store-1", "kitchen", gomock.Any()).Return(false, errors.New("redis down"))
			},
			now:         beforeOpen,
			wantOutcome: OutcomeFailed,
			wantFailed:  1,
		},
		{
			name:        "window already passed",
			setup:       func(*domain.MockNotificationLedger, *taskqueue.MockTaskQueue) {},
			now:         time.Date(2025, 3, 14, 19, 0, 0, 0, time.UTC),
			wantOutcome: OutcomeNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := domain.NewMockFloorRepository(ctrl)
			ledger := domain.NewMockNotificationLedger(ctrl)
			queue := taskqueue.NewMockTaskQueue(ctrl)

			expectStore(store, &domain.WaveSettings{PositionIDs: []string{"kitchen"}})
			ledger.EXPECT().ClaimedWindows(gomock.Any(), "store-1", "kitchen", tt.now, gomock.Any()).Return(nil, nil)
			tt.setup(ledger, queue)

			svc := newTestService(store, ledger, queue)
			result, err := svc.Evaluate(context.Background(), "store-1", serviceDay, tt.now)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got := result.Positions[0].Outcome; got != tt.wantOutcome {
				t.Errorf("outcome = %q, want %q", got, tt.wantOutcome)
			}
			if result.FailedCount != tt.wantFailed {
				t.Errorf("failed = %d, want %d", result.FailedCount, tt.wantFailed)
			}
			if result.ScheduledCount != 0 {
				t.Errorf("scheduled = %d, want 0", result.ScheduledCount)
			}
		})
	}
}

func TestService_Evaluate_CancelsStaleWindows(t *testing.T) {
	staleStart := time.Date(2025, 3, 14, 20, 30, 0, 0, time.UTC)
	staleTaskID := "calm-store-1-kitchen-1741984200000"

	tests := []struct {
		name         string
		deleteErr    error
		wantCanceled []string
	}{
		{name: "deleted and released", wantCanceled: []string{staleTaskID}},
		{name: "delete failure keeps the claim", deleteErr: errors.New("queue down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := domain.NewMockFloorRepository(ctrl)
			ledger := domain.NewMockNotificationLedger(ctrl)
			queue := taskqueue.NewMockTaskQueue(ctrl)

			expectStore(store, &domain.WaveSettings{PositionIDs: []string{"kitchen"}})
			ledger.EXPECT().ClaimedWindows(gomock.Any(), "store-1", "kitchen", beforeOpen, gomock.Any()).
				Return([]time.Time{windowStart, staleStart}, nil)
			queue.EXPECT().DeleteTask(gomock.Any(), staleTaskID).Return(tt.deleteErr)
			if tt.deleteErr == nil {
				ledger.EXPECT().ReleaseWindow(gomock.Any(), "store-1", "kitchen", staleStart).Return(nil)
			}
			ledger.EXPECT().ClaimWindow(gomock.Any(), "store-1", "kitchen", gomock.Any()).DoAndReturn(claimAt(windowStart, false))

			svc := newTestService(store, ledger, queue)
			result, err := svc.Evaluate(context.Background(), "store-1", serviceDay, beforeOpen)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}

			pos := result.Positions[0]
			if !reflect.DeepEqual(pos.CanceledTaskIDs, tt.wantCanceled) {
				t.Errorf("canceled = %v, want %v", pos.CanceledTaskIDs, tt.wantCanceled)
			}
			if result.CanceledCount != len(tt.wantCanceled) {
				t.Errorf("canceledCount = %d, want %d", result.CanceledCount, len(tt.wantCanceled))
			}
			if pos.Outcome != OutcomeDuplicate {
				t.Errorf("outcome = %q, want %q", pos.Outcome, OutcomeDuplicate)
			}
		})
	}
}

func TestService_Evaluate_RejectsOversizedSeries(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockFloorRepository(ctrl)
	queue := taskqueue.NewMockTaskQueue(ctrl)

	courses := []domain.Course{{
		Name: "omakase",
		Tasks: []domain.CourseTask{
			{Label: "serve", OffsetMinutes: 0, PositionID: "kitchen"},
			{Label: "follow-up", OffsetMinutes: 72 * 60, PositionID: "kitchen"},
		},
	}}
	store.EXPECT().GetReservations(gomock.Any(), "store-1", serviceDay).Return(testRecords(), nil)
	store.EXPECT().GetCourses(gomock.Any(), "store-1").Return(courses, nil)
	store.EXPECT().GetWaveSettings(gomock.Any(), "store-1").Return(&domain.WaveSettings{PositionIDs: []string{"kitchen"}}, nil)

	svc := newTestService(store, nil, queue)
	result, err := svc.Evaluate(context.Background(), "store-1", serviceDay, beforeOpen)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	pos := result.Positions[0]
	if pos.Outcome != OutcomeFailed || pos.Error == "" || result.FailedCount != 1 {
		t.Errorf("position = %+v, failed = %d", pos, result.FailedCount)
	}
}

func TestService_Evaluate_WithoutQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := domain.NewMockFloorRepository(ctrl)
	ledger := domain.NewMockNotificationLedger(ctrl)

	expectStore(store, nil)

	svc := newTestService(store, ledger, nil)
	result, err := svc.Evaluate(context.Background(), "store-1", serviceDay, beforeOpen)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	var positions, outcomes []string
	for _, p := range result.Positions {
		positions = append(positions, p.PositionID)
		outcomes = append(outcomes, p.Outcome)
	}
	if !reflect.DeepEqual(positions, []string{"kitchen", "pastry"}) {
		t.Errorf("positions = %v, want course positions", positions)
	}
	if !reflect.DeepEqual(outcomes, []string{OutcomeDisabled, OutcomeDisabled}) {
		t.Errorf("outcomes = %v", outcomes)
	}
	if result.TaskCount != 6 {
		t.Errorf("task count = %d, want 6", result.TaskCount)
	}
}

func TestService_Evaluate_Errors(t *testing.T) {
	storeErr := errors.New("redis down")

	tests := []struct {
		name    string
		storeID string
		setup   func(*domain.MockFloorRepository)
		wantErr error
	}{
		{
			name:    "missing store id",
			setup:   func(*domain.MockFloorRepository) {},
			wantErr: domain.ErrStoreIDMissing,
		},
		{
			name:    "reservations",
			storeID: "store-1",
			setup: func(s *domain.MockFloorRepository) {
				s.EXPECT().GetReservations(gomock.Any(), "store-1", serviceDay).Return(nil, storeErr)
			},
			wantErr: storeErr,
		},
		{
			name:    "courses",
			storeID: "store-1",
			setup: func(s *domain.MockFloorRepository) {
				s.EXPECT().GetReservations(gomock.Any(), "store-1", serviceDay).Return(nil, nil)
				s.EXPECT().GetCourses(gomock.Any(), "store-1").Return(nil, storeErr)
			},
			wantErr: storeErr,
		},
		{
			name:    "wave settings",
			storeID: "store-1",
			setup: func(s *domain.MockFloorRepository) {
				s.EXPECT().GetReservations(gomock.Any(), "store-1", serviceDay).Return(nil, nil)
				s.EXPECT().GetCourses(gomock.Any(), "store-1").Return(nil, nil)
				s.EXPECT().GetWaveSettings(gomock.Any(), "store-1").Return(nil, storeErr)
			},
			wantErr: storeErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := domain.NewMockFloorRepository(ctrl)
			tt.setup(store)

			svc := newTestService(store, nil, nil)
			_, err := svc.Evaluate(context.Background(), tt.storeID, serviceDay, beforeOpen)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMergeSettings(t *testing.T) {
	defaults := domain.WaveSettings{PositionIDs: []string{"hall"}, BucketMinutes: 5, Threshold: 20, MinCalmMinutes: 15, NotifyDelayMinutes: 5}

	tests := []struct {
		name   string
		stored *domain.WaveSettings
		want   domain.WaveSettings
	}{
		{name: "nil", stored: nil, want: defaults},
		{
			name:   "partial",
			stored: &domain.WaveSettings{Threshold: 8, NotifyDelayMinutes: 0},
			want:   domain.WaveSettings{PositionIDs: []string{"hall"}, BucketMinutes: 5, Threshold: 8, MinCalmMinutes: 15, NotifyDelayMinutes: 0},
		},
		{
			name:   "negative delay",
			stored: &domain.WaveSettings{PositionIDs: []string{"bar"}, NotifyDelayMinutes: -1},
			want:   domain.WaveSettings{PositionIDs: []string{"bar"}, BucketMinutes: 5, Threshold: 20, MinCalmMinutes: 15, NotifyDelayMinutes: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeSettings(tt.stored, defaults); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeSettings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
