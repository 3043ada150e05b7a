package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/macrolog/backend/internal/apierror"
	"github.com/macrolog/backend/internal/logger"
	"github.com/macrolog/backend/internal/models"
	"github.com/macrolog/backend/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, bindingProblem(c, err))
		return
	}

	authResp, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		if errors.Is(err, service.ErrUserExists) {
			apierror.WriteProblem(c, apierror.NewConflictError(requestID, "An account with this email already exists"))
			return
		}
		logger.Ctx(c.Request.Context()).Error("signup failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusCreated, authResp)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, bindingProblem(c, err))
		return
	}

	authResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		if errors.Is(err, service.ErrInvalidCredentials) {
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
			return
		}
		logger.Ctx(c.Request.Context()).Error("login failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, authResp)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, bindingProblem(c, err))
		return
	}

	authResp, err := h.authService.Refresh(c.Request.Context(), &req)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		// A rejected refresh token means the session is gone; the client
		// must authenticate again.
		if errors.Is(err, service.ErrInvalidCredentials) {
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
			return
		}
		logger.Ctx(c.Request.Context()).Error("token refresh failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
		return
	}

	c.JSON(http.StatusOK, authResp)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID.(string))
	if err != nil {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "user", userID.(string)))
		return
	}

	c.JSON(http.StatusOK, user)
}
