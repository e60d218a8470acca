package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
	apperrors "github.com/yanqian/aqi-search/pkg/errors"
)

// Handler wires the JSON API to the lookup service.
type Handler struct {
	svc    aqi.Service
	logger *slog.Logger
}

// NewHandler constructs the API handler.
func NewHandler(svc aqi.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "http.handler"),
	}
}

// Lookup returns the current reading for the city query parameter.
func (h *Handler) Lookup(c *gin.Context) {
	reading, err := h.svc.Lookup(c.Request.Context(), c.Query("city"))
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, reading)
}

// Recent lists the latest served lookups, newest first.
func (h *Handler) Recent(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "limit must be a positive integer", err))
			return
		}
		limit = parsed
	}

	records, err := h.svc.Recent(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"lookups": records})
}

// Health reports liveness together with lookup counters.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "lookups": h.svc.Stats()})
}
