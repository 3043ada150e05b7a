package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/macrolog/backend/internal/apierror"
	"github.com/macrolog/backend/internal/service"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetDaily handles GET /api/v1/analytics/daily
func (h *AnalyticsHandler) GetDaily(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	// The service clamps out-of-range counts, so parse failures can
	// simply fall through as zero.
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))

	buckets, err := h.analyticsService.DailyBuckets(c.Request.Context(), userID.(string), days)
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.JSON(http.StatusOK, buckets)
}

// GetWeekly handles GET /api/v1/analytics/weekly
func (h *AnalyticsHandler) GetWeekly(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	weeks, _ := strconv.Atoi(c.DefaultQuery("weeks", "0"))

	summaries, err := h.analyticsService.WeeklySummaries(c.Request.Context(), userID.(string), weeks)
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// GetMonthly handles GET /api/v1/analytics/monthly
func (h *AnalyticsHandler) GetMonthly(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	months, _ := strconv.Atoi(c.DefaultQuery("months", "0"))

	summaries, err := h.analyticsService.MonthlySummaries(c.Request.Context(), userID.(string), months)
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// GetSummary handles GET /api/v1/analytics/summary
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
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

	// Default to the last 30 days. An inverted range is passed through;
	// the service answers it with an empty period.
	to := time.Now()
	if end != nil {
		to = *end
	}
	from := to.AddDate(0, 0, -29)
	if start != nil {
		from = *start
	}

	summary, err := h.analyticsService.CustomSummary(c.Request.Context(), userID.(string), from, to)
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetInsights handles GET /api/v1/analytics/insights
func (h *AnalyticsHandler) GetInsights(c *gin.Context) {
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

	report, err := h.analyticsService.Insights(c.Request.Context(), userID.(string), period, count)
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.JSON(http.StatusOK, report)
}
