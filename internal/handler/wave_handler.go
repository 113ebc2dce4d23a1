package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/schedule"
	"github.com/KasumiMercury/primind-floor-operations/internal/service/wavenotify"
	"github.com/KasumiMercury/primind-floor-operations/internal/timemath"
	"github.com/KasumiMercury/primind-floor-operations/internal/wave"
)

// CalmWindowsRequest accepts either ready-made tasks or raw records plus the
// courses that expand them into tasks.
type CalmWindowsRequest struct {
	Tasks   []wave.Task     `json:"tasks,omitempty"`
	Records []domain.Record `json:"records,omitempty"`
	Courses []domain.Course `json:"courses,omitempty"`
	Day     string          `json:"day,omitempty"`

	PositionID         string   `json:"positionId"`
	VisibleTables      []string `json:"visibleTables,omitempty"`
	BucketMinutes      int      `json:"bucketMinutes,omitempty"`
	Threshold          int      `json:"threshold,omitempty"`
	MinCalmMinutes     int      `json:"minCalmMinutes,omitempty"`
	NotifyDelayMinutes *int     `json:"notifyDelayMinutes,omitempty"`
	SmoothRadius       int      `json:"smoothRadius,omitempty"`

	StartMs int64  `json:"startMs,omitempty"`
	EndMs   int64  `json:"endMs,omitempty"`
	NowMs   *int64 `json:"nowMs,omitempty"`
}

type CalmWindowsResponse struct {
	TaskCount int `json:"taskCount"`
	wavenotify.Analysis
}

type NotifyRequest struct {
	StoreID string `json:"storeId"`
	Day     string `json:"day,omitempty"`
}

type WaveHandler struct {
	notifier *wavenotify.Service
	location *time.Location
	now      func() time.Time
}

func NewWaveHandler(notifier *wavenotify.Service, loc *time.Location) *WaveHandler {
	if loc == nil {
		loc = time.Local
	}
	return &WaveHandler{notifier: notifier, location: loc, now: time.Now}
}

func (h *WaveHandler) HandleCalmWindows(c *gin.Context) {
	var req CalmWindowsRequest
	if err := bindJSONUseNumber(c, &req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if req.PositionID == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "positionId is required")
		return
	}

	day, err := parseDay(req.Day, h.location)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid day, expected YYYY-MM-DD")
		return
	}
	now := h.now()
	if day.IsZero() {
		day = now
	}

	tasks := req.Tasks
	if len(tasks) == 0 && len(req.Records) > 0 {
		sel := schedule.Select(req.Records, schedule.SelectOptions{
			DayStartMs:   timemath.StartOfDayMs(day.UnixMilli(), h.location),
			Location:     h.location,
			Courses:      req.Courses,
			FreeDeparted: true,
		})
		tasks = wave.SelectTasks(sel.Items, req.Courses, wave.SourceFilter{
			PositionIDs: []string{req.PositionID},
			Tables:      req.VisibleTables,
		})
	}

	params := wavenotify.AnalyzeParams{
		PositionID:    req.PositionID,
		VisibleTables: req.VisibleTables,
		StartMs:       req.StartMs,
		EndMs:         req.EndMs,
		Settings: domain.WaveSettings{
			BucketMinutes:      req.BucketMinutes,
			Threshold:          req.Threshold,
			MinCalmMinutes:     req.MinCalmMinutes,
			NotifyDelayMinutes: -1,
		},
		SmoothRadius: req.SmoothRadius,
		NowMs:        now.UnixMilli(),
	}
	if err := params.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if req.NotifyDelayMinutes != nil {
		params.Settings.NotifyDelayMinutes = *req.NotifyDelayMinutes
	}
	params.Settings = wavenotify.MergeSettings(&params.Settings, wavenotify.DefaultSettings)
	if req.NowMs != nil {
		params.NowMs = *req.NowMs
	}

	a, err := wavenotify.Analyze(tasks, params)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	c.JSON(http.StatusOK, CalmWindowsResponse{TaskCount: len(tasks), Analysis: a})
}

func (h *WaveHandler) HandleNotify(c *gin.Context) {
	ctx := c.Request.Context()

	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	day, err := parseDay(req.Day, h.location)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid day, expected YYYY-MM-DD")
		return
	}

	result, err := h.notifier.Evaluate(ctx, req.StoreID, day, h.now())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	slog.InfoContext(ctx, "calm window notification request processed",
		slog.String("store_id", req.StoreID),
		slog.Int("scheduled_count", result.ScheduledCount),
		slog.Int("failed_count", result.FailedCount),
	)

	c.JSON(http.StatusOK, result)
}
