package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/homehub/homehub-api/internal/service"
	appErrors "github.com/homehub/homehub-api/pkg/errors"
	"github.com/homehub/homehub-api/pkg/response"
)

// MessageHandler manages board message endpoints.
type MessageHandler struct {
	messages *service.MessageService
	unread   *service.UnreadService
}

// NewMessageHandler constructs handler.
func NewMessageHandler(messages *service.MessageService, unread *service.UnreadService) *MessageHandler {
	return &MessageHandler{messages: messages, unread: unread}
}

// actorRequest carries the acting user for read/delete mutations.
type actorRequest struct {
	UserID int64 `json:"user_id"`
}

// List returns active messages annotated with read receipts, newest first.
func (h *MessageHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be an integer"))
			return
		}
		limit = parsed
	}
	messages, err := h.messages.ListActive(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages)
}

// Post creates a new message.
func (h *MessageHandler) Post(c *gin.Context) {
	var req service.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	message, err := h.messages.Post(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// MarkRead acknowledges a message for a user. Repeated calls succeed.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "user_id is required"))
		return
	}
	ok, err := h.messages.MarkRead(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": ok})
}

// Delete soft-deletes a message on behalf of the requester. A message that is
// missing, already deleted, or owned by someone else uniformly reports
// forbidden so callers cannot probe for existence.
func (h *MessageHandler) Delete(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "user_id is required"))
		return
	}
	ok, err := h.messages.SoftDelete(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "message cannot be deleted"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true})
}

// UnreadCount returns the polling badge count for a user.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("userId"), 10, 64)
	if err != nil || userID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "userId is required"))
		return
	}
	count, err := h.unread.CountUnread(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"unread_count": count})
}
