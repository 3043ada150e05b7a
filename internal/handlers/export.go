package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/macrolog/backend/internal/apierror"
	"github.com/macrolog/backend/internal/service"
)

type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
	}
}

// MealsCSV handles GET /api/v1/export/meals.csv
func (h *ExportHandler) MealsCSV(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	start, end, ok := dateRangeParams(c)
	if !ok {
		return
	}

	data, err := h.exportService.MealsCSV(c.Request.Context(), userID.(string), start, end)
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="repas.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// SummaryCSV handles GET /api/v1/export/summary.csv
func (h *ExportHandler) SummaryCSV(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	period := c.DefaultQuery("period", service.PeriodWeek)
	if period != service.PeriodWeek && period != service.PeriodMonth {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
			{Field: "period", Message: "must be week or month", Code: "invalid_value"},
		}))
		return
	}
	count, _ := strconv.Atoi(c.DefaultQuery("count", "0"))

	data, err := h.exportService.SummaryCSV(c.Request.Context(), userID.(string), period, count)
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="resume.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ReportHTML handles GET /api/v1/export/report.html
func (h *ExportHandler) ReportHTML(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	start, end, ok := dateRangeParams(c)
	if !ok {
		return
	}

	data, err := h.exportService.ReportHTML(c.Request.Context(), userID.(string), start, end)
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	// Rendered inline so the browser shows the printable report
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}
