package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/physiotrack/evalform-service/internal/services"
	"github.com/physiotrack/evalform-service/internal/utils"
)

type ShareHandler struct {
	BaseHandler
	shareService services.ShareService
}

func NewShareHandler(shareService services.ShareService, logger utils.Logger) *ShareHandler {
	return &ShareHandler{
		BaseHandler:  NewBaseHandler(logger),
		shareService: shareService,
	}
}

// ShareResponse sends a stored response to another user as a chat message
// @Summary Share form response
// @Description Encodes the response into the shared-form message payload and delivers it to the recipient's thread
// @Tags responses
// @Accept json
// @Produce json
// @Param share body services.ShareResponseRequest true "Share target"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /responses/share [post]
func (h *ShareHandler) ShareResponse(c *gin.Context) {
	var req services.ShareResponseRequest
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

	h.LogRequest(c, "Sharing form response",
		"response_id", req.ResponseID,
		"recipient_id", req.RecipientID)

	message, err := h.shareService.Share(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}
