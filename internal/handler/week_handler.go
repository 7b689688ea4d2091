package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/homehub/homehub-api/internal/week"
	appErrors "github.com/homehub/homehub-api/pkg/errors"
	"github.com/homehub/homehub-api/pkg/response"
)

// WeekHandler exposes week resolution so clients and server agree on keys.
type WeekHandler struct{}

// NewWeekHandler constructs handler.
func NewWeekHandler() *WeekHandler {
	return &WeekHandler{}
}

// Current returns the context of the current week.
func (h *WeekHandler) Current(c *gin.Context) {
	now := time.Now()
	response.JSON(c, http.StatusOK, week.Resolve(now, now))
}

// Resolve maps a calendar date to its week context.
func (h *WeekHandler) Resolve(c *gin.Context) {
	raw := c.Query("date")
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD"))
		return
	}
	response.JSON(c, http.StatusOK, week.Resolve(date, time.Now()))
}
