package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/physiotrack/evalform-service/internal/repositories"
	"github.com/physiotrack/evalform-service/internal/services"
	"github.com/physiotrack/evalform-service/internal/utils"
)

type MessageHandler struct {
	BaseHandler
	messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService, logger utils.Logger) *MessageHandler {
	return &MessageHandler{
		BaseHandler:    NewBaseHandler(logger),
		messageService: messageService,
	}
}

// SendMessage sends a plain text message to another user
// @Summary Send message
// @Tags messages
// @Accept json
// @Produce json
// @Param message body services.SendMessageRequest true "Message"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /messages [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// GetThread returns the conversation with a partner, oldest first
// @Summary Get message thread
// @Description Returns the thread with each message tagged as plain text or a decoded shared form
// @Tags messages
// @Produce json
// @Param partner_id path string true "Partner user ID"
// @Success 200 {object} ListResponse
// @Failure 401 {object} ErrorResponse
// @Router /messages/thread/{partner_id} [get]
func (h *MessageHandler) GetThread(c *gin.Context) {
	partnerID := h.parseIDParam(c, "partner_id")
	if partnerID == "" {
		return
	}
	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	views, total, err := h.messageService.GetThread(c.Request.Context(), partnerID, userID, h.parseMessageFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: views, Total: total})
}

// ListThreads returns the user's conversation list
// @Summary List message threads
// @Tags messages
// @Produce json
// @Success 200 {object} ListResponse
// @Failure 401 {object} ErrorResponse
// @Router /messages/threads [get]
func (h *MessageHandler) ListThreads(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	threads, err := h.messageService.ListThreads(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: threads, Total: int64(len(threads))})
}

// MarkThreadRead marks every message the partner sent as read
// @Summary Mark thread read
// @Tags messages
// @Produce json
// @Param partner_id path string true "Partner user ID"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Router /messages/thread/{partner_id}/read [post]
func (h *MessageHandler) MarkThreadRead(c *gin.Context) {
	partnerID := h.parseIDParam(c, "partner_id")
	if partnerID == "" {
		return
	}
	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	if err := h.messageService.MarkThreadRead(c.Request.Context(), partnerID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Thread marked as read"})
}

func (h *MessageHandler) parseMessageFilters(c *gin.Context) repositories.MessageFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 50)

	filters := repositories.MessageFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}

	if before := c.Query("before"); before != "" {
		if t, err := time.Parse(time.RFC3339, before); err == nil {
			filters.Before = &t
		}
	}

	return filters
}
