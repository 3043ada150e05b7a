package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/macrolog/backend/internal/apierror"
	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/numutil"
	"github.com/macrolog/backend/internal/repository"
	"github.com/macrolog/backend/internal/service"
)

type MealHandler struct {
	mealService service.MealService
}

// NewMealHandler creates a new meal handler
func NewMealHandler(mealService service.MealService) *MealHandler {
	return &MealHandler{
		mealService: mealService,
	}
}

// CreateMeal handles POST /api/v1/meals
func (h *MealHandler) CreateMeal(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	// Bind to RawCreateMealRequest for manual coercion and aggregated
	// validation. Macro fields arrive as numbers or strings depending on
	// the client.
	var raw models.RawCreateMealRequest
	if err := c.ShouldBindJSON(&raw); err != nil {
		// JSON syntax error (not field-level)
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid JSON format"))
		return
	}

	var fieldErrors []apierror.FieldError
	var req models.CreateMealRequest

	if strings.TrimSpace(raw.Description) == "" {
		fieldErrors = append(fieldErrors, apierror.FieldError{
			Field:   "description",
			Message: "is required",
			Code:    "required",
		})
	} else {
		req.Description = raw.Description
	}

	if raw.Protein == nil {
		fieldErrors = append(fieldErrors, apierror.FieldError{
			Field:   "protein",
			Message: "is required",
			Code:    "required",
		})
	} else {
		// -1 doubles as the unparseable sentinel; negative grams are
		// rejected either way.
		p := numutil.SafeNumber(raw.Protein, -1)
		if p < 0 {
			fieldErrors = append(fieldErrors, apierror.FieldError{
				Field:   "protein",
				Message: "must be a non-negative number",
				Code:    "invalid_value",
			})
		} else {
			req.Protein = p
		}
	}

	if raw.Calories != nil {
		cal := numutil.SafeNumber(raw.Calories, -1)
		if cal < 0 {
			fieldErrors = append(fieldErrors, apierror.FieldError{
				Field:   "calories",
				Message: "must be a non-negative number",
				Code:    "invalid_value",
			})
		} else {
			req.Calories = &cal
		}
	}

	if raw.Timestamp == nil {
		req.Timestamp = time.Now()
	} else {
		ts := numutil.SafeDate(raw.Timestamp, time.Time{})
		if ts.IsZero() {
			fieldErrors = append(fieldErrors, apierror.FieldError{
				Field:   "timestamp",
				Message: "must be an RFC3339 timestamp, a date, or a Unix epoch",
				Code:    "invalid_format",
			})
		} else {
			req.Timestamp = ts
		}
	}

	if raw.Source != "" {
		src := models.MealSource(raw.Source)
		if !models.ValidSource(src) {
			fieldErrors = append(fieldErrors, apierror.FieldError{
				Field:   "source",
				Message: "must be one of manual, voice, photo, barcode",
				Code:    "invalid_value",
			})
		} else {
			req.Source = src
		}
	}

	req.ID = raw.ID
	req.PhotoURL = raw.PhotoURL

	// Return aggregated errors if any
	if len(fieldErrors) > 0 {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, fieldErrors))
		return
	}

	meal, wasCreated, err := h.mealService.CreateMeal(c.Request.Context(), userID.(string), &req)
	if err != nil {
		requestID := apierror.GetRequestID(c)

		if errors.Is(err, service.ErrInvalidUUID) || errors.Is(err, service.ErrNotUUIDv7) {
			apierror.WriteProblem(c, apierror.NewInvalidUUIDError(requestID, "id", *req.ID))
			return
		}
		if errors.Is(err, service.ErrFutureTimestamp) {
			apierror.WriteProblem(c, apierror.NewFutureTimestampError(requestID, "timestamp"))
			return
		}
		if errors.Is(err, service.ErrIDTaken) {
			apierror.WriteProblem(c, apierror.NewConflictError(requestID, "A meal with this ID already exists"))
			return
		}

		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	// 201 for new meals, 200 when a resubmitted ID replayed the stored one
	if wasCreated {
		c.JSON(http.StatusCreated, meal)
	} else {
		c.JSON(http.StatusOK, meal)
	}
}

// GetMeals handles GET /api/v1/meals
func (h *MealHandler) GetMeals(c *gin.Context) {
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

	// A date filter switches from pagination to range listing
	if start != nil || end != nil {
		meals, err := h.mealService.GetMealsInRange(c.Request.Context(), userID.(string), start, end)
		if err != nil {
			apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
			return
		}
		c.JSON(http.StatusOK, meals)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	meals, err := h.mealService.GetUserMeals(c.Request.Context(), userID.(string), limit, offset)
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.JSON(http.StatusOK, meals)
}

// GetMeal handles GET /api/v1/meals/:id
func (h *MealHandler) GetMeal(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	mealID := c.Param("id")
	meal, err := h.mealService.GetMeal(c.Request.Context(), userID.(string), mealID)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		if errors.Is(err, repository.ErrNotFound) {
			apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "meal", mealID))
			return
		}
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, meal)
}

// UpdateMeal handles PUT /api/v1/meals/:id
func (h *MealHandler) UpdateMeal(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	mealID := c.Param("id")

	var raw models.UpdateMealRequest
	if err := c.ShouldBindJSON(&raw); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid JSON format"))
		return
	}

	var fieldErrors []apierror.FieldError
	patch := models.MealPatch{Calories: raw.Calories}

	if raw.Description != nil {
		if strings.TrimSpace(*raw.Description) == "" {
			fieldErrors = append(fieldErrors, apierror.FieldError{
				Field:   "description",
				Message: "must not be empty",
				Code:    "invalid_value",
			})
		} else {
			patch.Description = raw.Description
		}
	}

	if raw.Protein != nil {
		p := numutil.SafeNumber(raw.Protein, -1)
		if p < 0 {
			fieldErrors = append(fieldErrors, apierror.FieldError{
				Field:   "protein",
				Message: "must be a non-negative number",
				Code:    "invalid_value",
			})
		} else {
			patch.Protein = &p
		}
	}

	// Explicit null clears the calorie count; a value must be valid
	if raw.Calories.Set && raw.Calories.Valid && raw.Calories.Value < 0 {
		fieldErrors = append(fieldErrors, apierror.FieldError{
			Field:   "calories",
			Message: "must be a non-negative number",
			Code:    "invalid_value",
		})
	}

	if raw.Timestamp != nil {
		ts := numutil.SafeDate(raw.Timestamp, time.Time{})
		if ts.IsZero() {
			fieldErrors = append(fieldErrors, apierror.FieldError{
				Field:   "timestamp",
				Message: "must be an RFC3339 timestamp, a date, or a Unix epoch",
				Code:    "invalid_format",
			})
		} else {
			patch.Timestamp = &ts
		}
	}

	if len(fieldErrors) > 0 {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, fieldErrors))
		return
	}

	meal, err := h.mealService.UpdateMeal(c.Request.Context(), userID.(string), mealID, &patch)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		if errors.Is(err, repository.ErrNotFound) {
			apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "meal", mealID))
			return
		}
		if errors.Is(err, service.ErrFutureTimestamp) {
			apierror.WriteProblem(c, apierror.NewFutureTimestampError(requestID, "timestamp"))
			return
		}
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, meal)
}

// DeleteMeal handles DELETE /api/v1/meals/:id
func (h *MealHandler) DeleteMeal(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	mealID := c.Param("id")

	if err := h.mealService.DeleteMeal(c.Request.Context(), userID.(string), mealID); err != nil {
		requestID := apierror.GetRequestID(c)
		if errors.Is(err, repository.ErrNotFound) {
			apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "meal", mealID))
			return
		}
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
