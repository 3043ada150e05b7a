package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/macrolog/backend/internal/apierror"
	"github.com/macrolog/backend/internal/logger"
	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/service"
)

// maxPhotoBytes caps meal photo uploads at 10 MB.
const maxPhotoBytes = 10 << 20

// aiRetryAfterSeconds is the Retry-After hint when analysis is not
// configured.
const aiRetryAfterSeconds = 3600

type AIHandler struct {
	aiService service.AIService
}

// NewAIHandler creates a new AI analysis handler
func NewAIHandler(aiService service.AIService) *AIHandler {
	return &AIHandler{
		aiService: aiService,
	}
}

// AnalyzeText handles POST /api/v1/ai/analyze-text
func (h *AIHandler) AnalyzeText(c *gin.Context) {
	if _, exists := c.Get("user_id"); !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	var req models.AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, bindingProblem(c, err))
		return
	}

	analysis, err := h.aiService.AnalyzeText(c.Request.Context(), req.Text)
	if err != nil {
		apierror.WriteProblem(c, h.analysisProblem(c, err))
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// AnalyzePhoto handles POST /api/v1/ai/analyze-photo
func (h *AIHandler) AnalyzePhoto(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
			{Field: "photo", Message: "is required", Code: "required"},
		}))
		return
	}
	if file.Size > maxPhotoBytes {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
			{Field: "photo", Message: "must be smaller than 10 MB", Code: "too_large"},
		}))
		return
	}

	src, err := file.Open()
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	// Some clients send octet-stream for photos; sniff before rejecting
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
			{Field: "photo", Message: "must be an image", Code: "invalid_type"},
		}))
		return
	}

	result, err := h.aiService.AnalyzePhoto(c.Request.Context(), userID.(string), data, contentType)
	if err != nil {
		apierror.WriteProblem(c, h.analysisProblem(c, err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// analysisProblem maps AI service failures. A missing API key is a 503
// with a retry hint; everything else is an upstream failure whose
// details stay in the server log.
func (h *AIHandler) analysisProblem(c *gin.Context, err error) *apierror.ProblemDetails {
	requestID := apierror.GetRequestID(c)

	if errors.Is(err, service.ErrAIUnavailable) {
		return apierror.NewServiceUnavailableError(requestID, aiRetryAfterSeconds)
	}

	logger.Ctx(c.Request.Context()).Error("meal analysis failed", logger.Err(err))
	return apierror.NewUpstreamError(requestID, "AI service")
}
