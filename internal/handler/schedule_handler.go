package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/homehub/homehub-api/internal/service"
	"github.com/homehub/homehub-api/internal/week"
	appErrors "github.com/homehub/homehub-api/pkg/errors"
	"github.com/homehub/homehub-api/pkg/response"
)

// ScheduleHandler manages weekly availability endpoints.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// GetWeek returns the seven-day block map for one user. The week defaults to
// the current one when the query parameter is absent.
func (h *ScheduleHandler) GetWeek(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	weekKey := c.Query("week")
	if weekKey == "" {
		weekKey = week.Key(time.Now())
	}

	schedule, err := h.service.GetWeek(c.Request.Context(), userID, weekKey)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, map[string]interface{}{"week_key": weekKey})
}

// GetWeekAll returns the whole household's schedules for one week.
func (h *ScheduleHandler) GetWeekAll(c *gin.Context) {
	weekKey := c.Query("week")
	if weekKey == "" {
		weekKey = week.Key(time.Now())
	}
	schedules, err := h.service.GetWeekForAll(c.Request.Context(), weekKey)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, map[string]interface{}{"week_key": weekKey})
}

// ReplaceDay swaps all blocks for one day and returns the refreshed week.
func (h *ScheduleHandler) ReplaceDay(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	var req service.ReplaceDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.service.ReplaceDay(c.Request.Context(), userID, req.WeekKey, c.Param("day"), req.Blocks)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, map[string]interface{}{"week_key": req.WeekKey})
}

// DeleteBlock removes one block and reports whether anything was removed.
func (h *ScheduleHandler) DeleteBlock(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}
	weekKey := c.Query("week")
	if weekKey == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "week is required"))
		return
	}
	deleted, err := h.service.DeleteBlock(c.Request.Context(), userID, weekKey, c.Param("day"), c.Param("blockId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted})
}

// pathUserID parses the :userId path segment, responding with a validation
// error on failure.
func pathUserID(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid user id"))
		return 0, false
	}
	return userID, true
}
