package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/macrolog/backend/internal/apierror"
	"github.com/macrolog/backend/internal/numutil"
)

// dateParam parses an optional date query parameter. RFC3339 timestamps
// and plain YYYY-MM-DD dates are both accepted. A malformed value writes
// a problem response and reports ok=false; an absent one is nil.
func dateParam(c *gin.Context, name string) (*time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, true
	}

	t := numutil.SafeDate(value, time.Time{})
	if t.IsZero() {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID,
			fmt.Sprintf("invalid %s: %q", name, value),
			"Dates must be RFC3339 timestamps or YYYY-MM-DD"))
		return nil, false
	}
	return &t, true
}

// dateRangeParams parses the start_date and end_date query parameters.
func dateRangeParams(c *gin.Context) (start, end *time.Time, ok bool) {
	if start, ok = dateParam(c, "start_date"); !ok {
		return nil, nil, false
	}
	if end, ok = dateParam(c, "end_date"); !ok {
		return nil, nil, false
	}
	return start, end, true
}

// bindingProblem converts a ShouldBindJSON failure into a problem.
// Validator tag failures become field errors; anything else is treated
// as malformed JSON.
func bindingProblem(c *gin.Context, err error) *apierror.ProblemDetails {
	requestID := apierror.GetRequestID(c)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fieldErrors := make([]apierror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fieldErrors = append(fieldErrors, apierror.FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: validationMessage(fe),
				Code:    fe.Tag(),
			})
		}
		return apierror.NewValidationError(requestID, fieldErrors)
	}

	return apierror.NewBadRequestError(requestID, err.Error(), "Invalid JSON format")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	}
	return "is invalid"
}
