package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/physiotrack/evalform-service/internal/services"
	"github.com/physiotrack/evalform-service/internal/utils"
)

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// ExportResponses downloads the requesting user's responses as a spreadsheet
// @Summary Export form responses
// @Description Renders every response of the user as xlsx or csv, one row per answered question
// @Tags responses
// @Produce application/octet-stream
// @Param format query string false "xlsx or csv" default(xlsx)
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /responses/export [get]
func (h *ExportHandler) ExportResponses(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	h.LogRequest(c, "Exporting form responses", "format", format)

	var (
		data        []byte
		err         error
		contentType string
	)

	switch format {
	case "xlsx":
		data, err = h.exportService.ExportResponsesToExcel(c.Request.Context(), userID)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "csv":
		data, err = h.exportService.ExportResponsesToCSV(c.Request.Context(), userID)
		contentType = "text/csv"
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: "format must be xlsx or csv",
		})
		return
	}

	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("responses_%s.%s", time.Now().Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
