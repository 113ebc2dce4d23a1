package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/schedule"
	"github.com/KasumiMercury/primind-floor-operations/internal/timemath"
)

type ConflictsRequest struct {
	Records      []domain.Record `json:"records"`
	Courses      []domain.Course `json:"courses,omitempty"`
	Day          string          `json:"day,omitempty"`
	FreeDeparted bool            `json:"freeDeparted,omitempty"`
}

type ScheduleHandler struct {
	location *time.Location
	now      func() time.Time
}

func NewScheduleHandler(loc *time.Location) *ScheduleHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ScheduleHandler{location: loc, now: time.Now}
}

// HandleConflicts normalizes raw reservation records for one service day and
// flags the ones that share a table at the same time.
func (h *ScheduleHandler) HandleConflicts(c *gin.Context) {
	var req ConflictsRequest
	if err := bindJSONUseNumber(c, &req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	day, err := parseDay(req.Day, h.location)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid day, expected YYYY-MM-DD")
		return
	}
	if day.IsZero() {
		day = h.now()
	}

	sel := schedule.Select(req.Records, schedule.SelectOptions{
		DayStartMs:   timemath.StartOfDayMs(day.UnixMilli(), h.location),
		Location:     h.location,
		Courses:      req.Courses,
		FreeDeparted: req.FreeDeparted,
	})
	if sel.Items == nil {
		sel.Items = []schedule.Item{}
	}

	c.JSON(http.StatusOK, sel)
}
