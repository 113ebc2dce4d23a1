package wavenotify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/infra/taskqueue"
	"github.com/KasumiMercury/primind-floor-operations/internal/observability/metrics"
	"github.com/KasumiMercury/primind-floor-operations/internal/observability/tracing"
	"github.com/KasumiMercury/primind-floor-operations/internal/schedule"
	"github.com/KasumiMercury/primind-floor-operations/internal/timemath"
	"github.com/KasumiMercury/primind-floor-operations/internal/wave"
)

const (
	OutcomeScheduled = "scheduled"
	OutcomeDuplicate = "duplicate"
	OutcomeNone      = "none"
	OutcomeFailed    = "failed"
	OutcomeDisabled  = "disabled"
	OutcomeCanceled  = "canceled"
)

var DefaultSettings = domain.WaveSettings{
	BucketMinutes:      wave.DefaultBucketMinutes,
	Threshold:          20,
	MinCalmMinutes:     15,
	NotifyDelayMinutes: 5,
}

type Config struct {
	Location     *time.Location
	Defaults     domain.WaveSettings
	SmoothRadius int
}

type PositionResult struct {
	PositionID string            `json:"positionId"`
	Windows    []wave.CalmWindow `json:"windows"`
	Window     *wave.CalmWindow  `json:"window,omitempty"`
	NotifyAtMs int64             `json:"notifyAtMs,omitempty"`
	TaskID     string            `json:"taskId,omitempty"`
	Outcome    string            `json:"outcome"`
	Error      string            `json:"error,omitempty"`

	// CanceledTaskIDs are notifications withdrawn because their window is gone.
	CanceledTaskIDs []string `json:"canceledTaskIds,omitempty"`
}

type Result struct {
	StoreID        string           `json:"storeId"`
	Day            string           `json:"day"`
	TaskCount      int              `json:"taskCount"`
	SkippedRecords int              `json:"skippedRecords"`
	ScheduledCount int              `json:"scheduledCount"`
	FailedCount    int              `json:"failedCount"`
	CanceledCount  int              `json:"canceledCount"`
	Positions      []PositionResult `json:"positions"`
}

type Service struct {
	store   domain.FloorRepository
	ledger  domain.NotificationLedger
	queue   taskqueue.TaskQueue
	metrics *metrics.WaveMetrics
	cfg     Config
}

// NewService builds the notifier. ledger, queue and waveMetrics may be nil; a
// nil queue computes windows without scheduling anything.
func NewService(
	store domain.FloorRepository,
	ledger domain.NotificationLedger,
	queue taskqueue.TaskQueue,
	waveMetrics *metrics.WaveMetrics,
	cfg Config,
) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.SmoothRadius < 1 {
		cfg.SmoothRadius = DefaultSmoothRadius
	}
	cfg.SmoothRadius = min(cfg.SmoothRadius, wave.MaxSmoothRadius)
	cfg.Defaults = MergeSettings(&cfg.Defaults, DefaultSettings)
	cfg.Defaults.BucketMinutes = min(cfg.Defaults.BucketMinutes, wave.MaxBucketMinutes)
	return &Service{
		store:   store,
		ledger:  ledger,
		queue:   queue,
		metrics: waveMetrics,
		cfg:     cfg,
	}
}

// Evaluate computes the calm windows of a store's service day and schedules
// one notification per position for the next upcoming window.
func (s *Service) Evaluate(ctx context.Context, storeID string, day, now time.Time) (result *Result, err error) {
	if day.IsZero() {
		day = now
	}
	day = day.In(s.cfg.Location)

	ctx, span := tracing.StartWaveEvaluationSpan(ctx, storeID, day)
	defer func() {
		windows := 0
		scheduled := 0
		if result != nil {
			for _, p := range result.Positions {
				windows += len(p.Windows)
			}
			scheduled = result.ScheduledCount
		}
		tracing.RecordWaveEvaluationResult(span, windows, scheduled, err)
		span.End()
		s.recordEvaluation(ctx, result, err)
	}()

	if storeID == "" {
		return nil, domain.ErrStoreIDMissing
	}

	records, err := s.store.GetReservations(ctx, storeID, day)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	courses, err := s.store.GetCourses(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	stored, err := s.store.GetWaveSettings(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("load wave settings: %w", err)
	}
	settings := MergeSettings(stored, s.cfg.Defaults)

	dayStartMs := timemath.StartOfDayMs(day.UnixMilli(), s.cfg.Location)
	sel := schedule.Select(records, schedule.SelectOptions{
		DayStartMs:   dayStartMs,
		Location:     s.cfg.Location,
		Courses:      courses,
		FreeDeparted: true,
	})
	tasks := wave.SelectTasks(sel.Items, courses, wave.SourceFilter{
		PositionIDs: settings.PositionIDs,
		Tables:      settings.VisibleTables,
	})

	positions := settings.PositionIDs
	if len(positions) == 0 {
		positions = positionsOf(courses)
	}

	result = &Result{
		StoreID:        storeID,
		Day:            day.Format(time.DateOnly),
		TaskCount:      len(tasks),
		SkippedRecords: len(sel.Skipped),
		Positions:      make([]PositionResult, 0, len(positions)),
	}

	for _, pos := range positions {
		a, analyzeErr := Analyze(tasks, AnalyzeParams{
			PositionID:    pos,
			VisibleTables: settings.VisibleTables,
			Settings:      settings,
			SmoothRadius:  s.cfg.SmoothRadius,
			NowMs:         now.UnixMilli(),
		})
		if s.metrics != nil {
			s.metrics.RecordCalmWindows(ctx, pos, len(a.Windows))
		}

		pr := PositionResult{
			PositionID: pos,
			Windows:    a.Windows,
			Window:     a.Window,
			NotifyAtMs: a.NotifyAtMs,
			Outcome:    OutcomeNone,
		}
		switch {
		case analyzeErr != nil:
			slog.WarnContext(ctx, "calm window analysis rejected",
				slog.String("store_id", storeID),
				slog.String("position_id", pos),
				slog.String("error", analyzeErr.Error()),
			)
			pr.Outcome = OutcomeFailed
			pr.Error = analyzeErr.Error()
		default:
			pr.CanceledTaskIDs = s.cancelStale(ctx, storeID, pos, time.UnixMilli(dayStartMs).In(s.cfg.Location), now, a.Windows)
			result.CanceledCount += len(pr.CanceledTaskIDs)
			if s.metrics != nil {
				for range pr.CanceledTaskIDs {
					s.metrics.RecordNotification(ctx, pos, OutcomeCanceled)
				}
			}
			if a.Window == nil {
				break
			}
			taskID, outcome, schedErr := s.schedule(ctx, storeID, pos, *a.Window, a.NotifyAtMs)
			pr.TaskID = taskID
			pr.Outcome = outcome
			if schedErr != nil {
				pr.Error = schedErr.Error()
			}
		}

		switch pr.Outcome {
		case OutcomeScheduled:
			result.ScheduledCount++
		case OutcomeFailed:
			result.FailedCount++
		}
		if s.metrics != nil {
			s.metrics.RecordNotification(ctx, pos, pr.Outcome)
		}
		result.Positions = append(result.Positions, pr)
	}

	slog.InfoContext(ctx, "wave evaluation finished",
		slog.String("store_id", storeID),
		slog.String("day", result.Day),
		slog.Int("task_count", result.TaskCount),
		slog.Int("position_count", len(result.Positions)),
		slog.Int("scheduled_count", result.ScheduledCount),
		slog.Int("failed_count", result.FailedCount),
		slog.Int("canceled_count", result.CanceledCount),
	)

	return result, nil
}

// cancelStale withdraws the pending notifications of claimed windows that
// are no longer among windows, typically after a reservation moved. Only
// claims starting at or after now are considered. A claim is released only
// once its task is deleted.
func (s *Service) cancelStale(ctx context.Context, storeID, positionID string, dayStart, now time.Time, windows []wave.CalmWindow) []string {
	if s.queue == nil || s.ledger == nil {
		return nil
	}

	from := dayStart
	if now.After(from) {
		from = now
	}
	to := dayStart.Add(time.Duration(wave.MaxSpanMs) * time.Millisecond)

	claimed, err := s.ledger.ClaimedWindows(ctx, storeID, positionID, from, to)
	if err != nil {
		slog.WarnContext(ctx, "failed to list claimed calm windows",
			slog.String("store_id", storeID),
			slog.String("position_id", positionID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	var canceled []string
	for _, start := range claimed {
		if slices.ContainsFunc(windows, func(w wave.CalmWindow) bool { return w.Start == start.UnixMilli() }) {
			continue
		}

		taskID := taskqueue.CalmWindowTaskID(storeID, positionID, start.In(s.cfg.Location))
		if err := s.queue.DeleteTask(ctx, taskID); err != nil {
			slog.WarnContext(ctx, "failed to cancel stale calm window notification",
				slog.String("store_id", storeID),
				slog.String("position_id", positionID),
				slog.String("task_id", taskID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if err := s.ledger.ReleaseWindow(ctx, storeID, positionID, start); err != nil {
			slog.WarnContext(ctx, "failed to release stale calm window claim",
				slog.String("task_id", taskID),
				slog.String("error", err.Error()),
			)
		}

		slog.InfoContext(ctx, "stale calm window notification canceled",
			slog.String("store_id", storeID),
			slog.String("position_id", positionID),
			slog.String("task_id", taskID),
			slog.Time("window_start", start),
		)
		canceled = append(canceled, taskID)
	}
	return canceled
}

// schedule claims the window and hands the notification to the task queue. A
// failed registration releases the claim so a later evaluation can retry.
func (s *Service) schedule(ctx context.Context, storeID, positionID string, w wave.CalmWindow, notifyAtMs int64) (string, string, error) {
	if s.queue == nil {
		return "", OutcomeDisabled, nil
	}

	windowStart := time.UnixMilli(w.Start).In(s.cfg.Location)
	windowEnd := time.UnixMilli(w.End).In(s.cfg.Location)
	taskID := taskqueue.CalmWindowTaskID(storeID, positionID, windowStart)

	if s.ledger != nil {
		claimed, err := s.ledger.ClaimWindow(ctx, storeID, positionID, windowStart)
		if err != nil {
			slog.ErrorContext(ctx, "failed to claim calm window",
				slog.String("store_id", storeID),
				slog.String("position_id", positionID),
				slog.String("error", err.Error()),
			)
			return taskID, OutcomeFailed, err
		}
		if !claimed {
			slog.DebugContext(ctx, "calm window already notified",
				slog.String("store_id", storeID),
				slog.String("position_id", positionID),
				slog.Time("window_start", windowStart),
			)
			return taskID, OutcomeDuplicate, nil
		}
	}

	task := &taskqueue.NotificationTask{
		TaskID:      taskID,
		ScheduleAt:  time.UnixMilli(notifyAtMs),
		StoreID:     storeID,
		PositionID:  positionID,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Message:     calmMessage(positionID, windowStart, windowEnd),
	}

	_, err := s.queue.RegisterNotification(ctx, task)
	switch {
	case errors.Is(err, taskqueue.ErrTaskExists):
		return taskID, OutcomeDuplicate, nil
	case err != nil:
		slog.ErrorContext(ctx, "failed to register calm window notification",
			slog.String("store_id", storeID),
			slog.String("position_id", positionID),
			slog.String("task_id", taskID),
			slog.String("error", err.Error()),
		)
		if s.ledger != nil {
			if relErr := s.ledger.ReleaseWindow(ctx, storeID, positionID, windowStart); relErr != nil {
				slog.WarnContext(ctx, "failed to release calm window claim",
					slog.String("task_id", taskID),
					slog.String("error", relErr.Error()),
				)
			}
		}
		return taskID, OutcomeFailed, err
	}

	slog.InfoContext(ctx, "calm window notification scheduled",
		slog.String("store_id", storeID),
		slog.String("position_id", positionID),
		slog.String("task_id", taskID),
		slog.Time("window_start", windowStart),
		slog.Time("notify_at", task.ScheduleAt),
	)
	return taskID, OutcomeScheduled, nil
}

func (s *Service) recordEvaluation(ctx context.Context, result *Result, err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case err != nil:
		s.metrics.RecordEvaluation(ctx, OutcomeFailed)
	case result.FailedCount > 0:
		s.metrics.RecordEvaluation(ctx, "partial")
	default:
		s.metrics.RecordEvaluation(ctx, "ok")
	}
}

func calmMessage(positionID string, start, end time.Time) string {
	return fmt.Sprintf("%s: calm from %s to %s", positionID, start.Format("15:04"), end.Format("15:04"))
}

// MergeSettings fills unset fields of s from defaults.
func MergeSettings(s *domain.WaveSettings, defaults domain.WaveSettings) domain.WaveSettings {
	if s == nil {
		return defaults
	}
	out := *s
	if len(out.PositionIDs) == 0 {
		out.PositionIDs = defaults.PositionIDs
	}
	if len(out.VisibleTables) == 0 {
		out.VisibleTables = defaults.VisibleTables
	}
	if out.BucketMinutes <= 0 {
		out.BucketMinutes = defaults.BucketMinutes
	}
	if out.Threshold <= 0 {
		out.Threshold = defaults.Threshold
	}
	if out.MinCalmMinutes <= 0 {
		out.MinCalmMinutes = defaults.MinCalmMinutes
	}
	if out.NotifyDelayMinutes < 0 {
		out.NotifyDelayMinutes = defaults.NotifyDelayMinutes
	}
	return out
}

// positionsOf lists every position that appears in a course, sorted.
func positionsOf(courses []domain.Course) []string {
	var out []string
	for _, c := range courses {
		for _, t := range c.Tasks {
			if t.PositionID != "" && !slices.Contains(out, t.PositionID) {
				out = append(out, t.PositionID)
			}
		}
	}
	slices.Sort(out)
	return out
}
