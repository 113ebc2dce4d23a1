package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/wave"
)

// FloorHandler exposes the per-store floor documents the optimizer and the
// notifier read.
type FloorHandler struct {
	store    domain.FloorRepository
	location *time.Location
}

func NewFloorHandler(store domain.FloorRepository, loc *time.Location) *FloorHandler {
	if loc == nil {
		loc = time.Local
	}
	return &FloorHandler{store: store, location: loc}
}

func (h *FloorHandler) day(c *gin.Context) (time.Time, bool) {
	day, err := parseDay(c.Param("day"), h.location)
	if err != nil || day.IsZero() {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid day, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return day, true
}

func (h *FloorHandler) HandleListReservations(c *gin.Context) {
	day, ok := h.day(c)
	if !ok {
		return
	}
	records, err := h.store.GetReservations(c.Request.Context(), c.Param("storeId"), day)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if records == nil {
		records = []domain.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"reservations": records})
}

// HandlePutReservation upserts one raw record. Saving publishes a change event
// that triggers a calm-window re-evaluation.
func (h *FloorHandler) HandlePutReservation(c *gin.Context) {
	ctx := c.Request.Context()
	day, ok := h.day(c)
	if !ok {
		return
	}

	var record domain.Record
	if err := bindJSONUseNumber(c, &record); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	storeID := c.Param("storeId")
	if err := h.store.SaveReservation(ctx, storeID, day, record); err != nil {
		respondServiceError(c, err)
		return
	}

	slog.InfoContext(ctx, "reservation saved",
		slog.String("store_id", storeID),
		slog.String("day", c.Param("day")),
	)
	c.Status(http.StatusNoContent)
}

func (h *FloorHandler) HandleGetTables(c *gin.Context) {
	tables, err := h.store.GetTables(c.Request.Context(), c.Param("storeId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

func (h *FloorHandler) HandlePutTables(c *gin.Context) {
	var tables []domain.Table
	if err := c.ShouldBindJSON(&tables); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	for _, t := range tables {
		if t.ID == "" || t.Capacity < 0 {
			respondError(c, http.StatusBadRequest, "validation_error", "every table needs an id and a non-negative capacity")
			return
		}
	}
	if err := h.store.SaveTables(c.Request.Context(), c.Param("storeId"), tables); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FloorHandler) HandleGetPolicy(c *gin.Context) {
	policy, err := h.store.GetPolicy(c.Request.Context(), c.Param("storeId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if policy == nil {
		policy = &domain.Policy{Joinables: []domain.Joinable{}}
	}
	c.JSON(http.StatusOK, policy)
}

func (h *FloorHandler) HandlePutPolicy(c *gin.Context) {
	var policy domain.Policy
	if err := c.ShouldBindJSON(&policy); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	for _, j := range policy.Joinables {
		if len(j.Tables) == 0 || j.Max < 0 {
			respondError(c, http.StatusBadRequest, "validation_error", "every joinable group needs tables and a non-negative max")
			return
		}
	}
	if err := h.store.SavePolicy(c.Request.Context(), c.Param("storeId"), &policy); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FloorHandler) HandleGetCourses(c *gin.Context) {
	courses, err := h.store.GetCourses(c.Request.Context(), c.Param("storeId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if courses == nil {
		courses = []domain.Course{}
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *FloorHandler) HandlePutCourses(c *gin.Context) {
	var courses []domain.Course
	if err := c.ShouldBindJSON(&courses); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if err := h.store.SaveCourses(c.Request.Context(), c.Param("storeId"), courses); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FloorHandler) HandleGetWaveSettings(c *gin.Context) {
	settings, err := h.store.GetWaveSettings(c.Request.Context(), c.Param("storeId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if settings == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *FloorHandler) HandlePutWaveSettings(c *gin.Context) {
	var settings domain.WaveSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if settings.BucketMinutes < 0 || settings.Threshold < 0 || settings.MinCalmMinutes < 0 || settings.NotifyDelayMinutes < 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "wave settings must not be negative")
		return
	}
	if settings.BucketMinutes > wave.MaxBucketMinutes {
		respondError(c, http.StatusBadRequest, "validation_error", fmt.Sprintf("bucketMinutes must be at most %d", wave.MaxBucketMinutes))
		return
	}
	if err := h.store.SaveWaveSettings(c.Request.Context(), c.Param("storeId"), &settings); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
