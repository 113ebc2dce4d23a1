package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-floor-operations/internal/domain"
	"github.com/KasumiMercury/primind-floor-operations/internal/infra/generator"
	"github.com/KasumiMercury/primind-floor-operations/internal/infra/repository"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Retryable *bool  `json:"retryable,omitempty"`
}

func respondError(c *gin.Context, status int, errType, message string) {
	c.JSON(status, ErrorResponse{Error: errType, Message: message})
}

// respondServiceError maps service and upstream errors onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var genErr *generator.Error
	switch {
	case errors.Is(err, domain.ErrPayloadMissing),
		errors.Is(err, domain.ErrInvalidContext),
		errors.Is(err, domain.ErrStoreIDMissing),
		errors.Is(err, repository.ErrInvalidRecord):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domain.ErrStoreNotFound):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrUnparseablePayload):
		respondError(c, http.StatusUnprocessableEntity, "unparseable_payload", err.Error())
	case errors.As(err, &genErr):
		retryable := genErr.Retryable()
		status := http.StatusBadGateway
		errType := "upstream_error"
		if genErr.Kind == generator.KindTimeout {
			status = http.StatusGatewayTimeout
			errType = "upstream_timeout"
		}
		slog.WarnContext(ctx, "generator request failed",
			slog.String("kind", string(genErr.Kind)),
			slog.Int("upstream_status", genErr.StatusCode),
			slog.Bool("retryable", retryable),
		)
		c.JSON(status, ErrorResponse{Error: errType, Message: err.Error(), Retryable: &retryable})
	case errors.Is(err, domain.ErrUnparseableResponse):
		retryable := true
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "unparseable_response", Message: err.Error(), Retryable: &retryable})
	default:
		slog.ErrorContext(ctx, "request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// parseDay reads a yyyy-mm-dd service day. An empty value is the zero time.
func parseDay(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(time.DateOnly, raw, loc)
}

// bindJSONUseNumber decodes the body keeping numbers as json.Number so
// millisecond timestamps in raw records survive untouched.
func bindJSONUseNumber(c *gin.Context, v any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	return dec.Decode(v)
}
