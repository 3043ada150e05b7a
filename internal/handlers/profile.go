package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/macrolog/backend/internal/apierror"
	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/numutil"
	"github.com/macrolog/backend/internal/service"
)

type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// GetProfile handles GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), userID.(string))
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/v1/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	var raw models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&raw); err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid JSON format"))
		return
	}

	var fieldErrors []apierror.FieldError
	patch := models.ProfilePatch{DisplayName: raw.DisplayName, Timezone: raw.Timezone}

	if raw.ProteinGoal != nil {
		p := numutil.SafeNumber(raw.ProteinGoal, -1)
		if p <= 0 {
			fieldErrors = append(fieldErrors, apierror.FieldError{
				Field:   "protein_goal",
				Message: "must be a positive number",
				Code:    "invalid_value",
			})
		} else {
			patch.ProteinGoal = &p
		}
	}

	if raw.CalorieGoal != nil {
		// Zero clears the calorie goal, so only negatives are invalid
		cal := numutil.SafeNumber(raw.CalorieGoal, -1)
		if cal < 0 {
			fieldErrors = append(fieldErrors, apierror.FieldError{
				Field:   "calorie_goal",
				Message: "must be a non-negative number",
				Code:    "invalid_value",
			})
		} else {
			patch.CalorieGoal = &cal
		}
	}

	if len(fieldErrors) > 0 {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, fieldErrors))
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), userID.(string), &patch)
	if err != nil {
		requestID := apierror.GetRequestID(c)

		if errors.Is(err, service.ErrInvalidTimezone) {
			apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
				{Field: "timezone", Message: "must be a valid IANA timezone", Code: "invalid_value"},
			}))
			return
		}
		if errors.Is(err, service.ErrInvalidGoal) {
			apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Invalid goal value"))
			return
		}

		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, profile)
}
