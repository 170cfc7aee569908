package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/physiotrack/evalform-service/internal/services"
	"github.com/physiotrack/evalform-service/internal/utils"
)

type FormHandler struct {
	BaseHandler
	catalogService services.CatalogService
}

func NewFormHandler(catalogService services.CatalogService, logger utils.Logger) *FormHandler {
	return &FormHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

// ListForms returns the form catalog with per-user completion flags
// @Summary List evaluation forms
// @Description Returns every evaluation form, each flagged as completed when the requesting user has at least one stored response
// @Tags forms
// @Produce json
// @Success 200 {object} ListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /forms [get]
func (h *FormHandler) ListForms(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	forms, err := h.catalogService.List(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: forms, Total: int64(len(forms))})
}

// GetForm returns one form with its ordered questions
// @Summary Get evaluation form
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == "" {
		return
	}
	if h.getUserID(c) == "" {
		return
	}

	form, err := h.catalogService.GetForm(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}
