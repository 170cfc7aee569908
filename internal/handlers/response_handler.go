package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/physiotrack/evalform-service/internal/repositories"
	"github.com/physiotrack/evalform-service/internal/services"
	"github.com/physiotrack/evalform-service/internal/utils"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
}

func NewResponseHandler(responseService services.ResponseService, logger utils.Logger) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
	}
}

// SubmitResponse records a scored form submission
// @Summary Submit form response
// @Description Validates required answers, scores the submission, and persists it. Rejected submissions leave no stored state.
// @Tags responses
// @Accept json
// @Produce json
// @Param response body services.SubmitResponseRequest true "Answer mapping"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /responses [post]
func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	var req services.SubmitResponseRequest
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

	h.LogRequest(c, "Submitting form response", "form_id", req.FormID)

	response, err := h.responseService.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetResponse returns one stored response owned by the requesting user
// @Summary Get form response
// @Tags responses
// @Produce json
// @Param id path string true "Response ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /responses/{id} [get]
func (h *ResponseHandler) GetResponse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	response, err := h.responseService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListResponses returns the requesting user's responses
// @Summary List form responses
// @Tags responses
// @Produce json
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Param form_id query string false "Filter by form"
// @Success 200 {object} ListResponse
// @Failure 401 {object} ErrorResponse
// @Router /responses [get]
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	responses, total, err := h.responseService.ListByUser(c.Request.Context(), userID, h.parseResponseFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: responses, Total: total})
}

// DeleteResponse removes a stored response owned by the requesting user
// @Summary Delete form response
// @Description Deletes the stored response. Messages that already shared it keep their snapshot.
// @Tags responses
// @Produce json
// @Param id path string true "Response ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /responses/{id} [delete]
func (h *ResponseHandler) DeleteResponse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Deleting form response", "response_id", id)

	if err := h.responseService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Response deleted successfully"})
}

func (h *ResponseHandler) parseResponseFilters(c *gin.Context) repositories.ResponseFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.ResponseFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "date_completed"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if formID := c.Query("form_id"); formID != "" {
		filters.FormID = &formID
	}
	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.DateTo = &t
		}
	}

	return filters
}
