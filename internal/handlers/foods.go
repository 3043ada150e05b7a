package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/macrolog/backend/internal/apierror"
	"github.com/macrolog/backend/internal/logger"
	"github.com/macrolog/backend/internal/service"
)

type FoodHandler struct {
	foodService service.FoodService
}

// NewFoodHandler creates a new food lookup handler
func NewFoodHandler(foodService service.FoodService) *FoodHandler {
	return &FoodHandler{
		foodService: foodService,
	}
}

// LookupBarcode handles GET /api/v1/foods/barcode/:code
func (h *FoodHandler) LookupBarcode(c *gin.Context) {
	if _, exists := c.Get("user_id"); !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	code := c.Param("code")
	product, err := h.foodService.LookupBarcode(c.Request.Context(), code)
	if err != nil {
		requestID := apierror.GetRequestID(c)

		if errors.Is(err, service.ErrInvalidBarcode) {
			apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
				{Field: "code", Message: "must be 8 to 14 digits", Code: "invalid_format"},
			}))
			return
		}
		if errors.Is(err, service.ErrFoodNotFound) {
			apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "food product", code))
			return
		}

		logger.Ctx(c.Request.Context()).Error("barcode lookup failed",
			logger.String("barcode", code), logger.Err(err))
		apierror.WriteProblem(c, apierror.NewUpstreamError(requestID, "food database"))
		return
	}

	c.JSON(http.StatusOK, product)
}
