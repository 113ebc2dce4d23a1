package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/service/optimizer"
)

type OptimizeRequest struct {
	Payload          string             `json:"payload"`
	StoreID          string             `json:"storeId,omitempty"`
	Day              string             `json:"day,omitempty"`
	Context          *optimizer.Context `json:"context,omitempty"`
	Strict           bool               `json:"strict,omitempty"`
	AutoRepair       bool               `json:"autoRepair,omitempty"`
	OptimizeByPolicy bool               `json:"optimizeByPolicy,omitempty"`
	Repair           bool               `json:"repair,omitempty"`
}

type PayloadRequest struct {
	StoreID string             `json:"storeId,omitempty"`
	Day     string             `json:"day,omitempty"`
	Context *optimizer.Context `json:"context,omitempty"`
	Prompt  string             `json:"prompt,omitempty"`
}

type PayloadResponse struct {
	Payload string `json:"payload"`
}

// StrictRejection carries the full result next to the rejection reason so the
// caller can show what failed.
type StrictRejection struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	*optimizer.Response
}

type OptimizerHandler struct {
	optimizer *optimizer.Service
	location  *time.Location
}

func NewOptimizerHandler(optimizerService *optimizer.Service, loc *time.Location) *OptimizerHandler {
	if loc == nil {
		loc = time.Local
	}
	return &OptimizerHandler{
		optimizer: optimizerService,
		location:  loc,
	}
}

func (h *OptimizerHandler) HandleConvert(c *gin.Context) {
	h.run(c, optimizer.ModeConvert, h.optimizer.Convert)
}

func (h *OptimizerHandler) HandlePreview(c *gin.Context) {
	h.run(c, optimizer.ModePreview, h.optimizer.Preview)
}

func (h *OptimizerHandler) run(
	c *gin.Context,
	mode string,
	fn func(context.Context, optimizer.Request) (*optimizer.Response, error),
) {
	ctx := c.Request.Context()

	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "request unmarshal failed",
			slog.String("error", err.Error()),
			slog.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	day, err := parseDay(req.Day, h.location)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid day, expected YYYY-MM-DD")
		return
	}

	slog.InfoContext(ctx, "handling optimizer request",
		slog.String("mode", mode),
		slog.String("store_id", req.StoreID),
		slog.Bool("strict", req.Strict),
		slog.Bool("repair", req.Repair),
		slog.Int("payload_bytes", len(req.Payload)),
	)

	resp, err := fn(ctx, optimizer.Request{
		Payload:          req.Payload,
		StoreID:          req.StoreID,
		Day:              day,
		Context:          req.Context,
		Strict:           req.Strict,
		AutoRepair:       req.AutoRepair,
		OptimizeByPolicy: req.OptimizeByPolicy,
		Repair:           req.Repair,
	})
	if errors.Is(err, domain.ErrStrictRejected) && resp != nil {
		c.JSON(http.StatusUnprocessableEntity, StrictRejection{
			Error:    "strict_rejected",
			Message:  err.Error(),
			Response: resp,
		})
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *OptimizerHandler) HandlePayload(c *gin.Context) {
	ctx := c.Request.Context()

	var req PayloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if req.Context == nil && req.StoreID == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "context or storeId is required")
		return
	}

	day, err := parseDay(req.Day, h.location)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid day, expected YYYY-MM-DD")
		return
	}

	payload, err := h.optimizer.BuildPayload(ctx, req.StoreID, day, req.Context, req.Prompt)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PayloadResponse{Payload: payload})
}
