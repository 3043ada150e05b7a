package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/macrolog/backend/internal/apierror"
	"github.com/macrolog/backend/internal/logger"
	"github.com/macrolog/backend/internal/service"
)

type AccountHandler struct {
	exportService  service.ExportService
	accountService service.AccountService
}

// NewAccountHandler creates a new account lifecycle handler
func NewAccountHandler(exportService service.ExportService, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		exportService:  exportService,
		accountService: accountService,
	}
}

// ExportAccount handles GET /api/v1/account/export
func (h *AccountHandler) ExportAccount(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	bundle, err := h.exportService.AccountExport(c.Request.Context(), userID.(string))
	if err != nil {
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="macrolog-export.json"`)
	c.JSON(http.StatusOK, bundle)
}

// DeleteAccount handles DELETE /api/v1/account
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		requestID := apierror.GetRequestID(c)
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(requestID))
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), userID.(string)); err != nil {
		logger.Ctx(c.Request.Context()).Error("account deletion failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
