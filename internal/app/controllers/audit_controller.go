package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/app/services"
	"github.com/ozgurs/applyhub/internal/middleware"
	"github.com/ozgurs/applyhub/internal/pkg/helpers"
)

// AuditController exposes the audit trail
type AuditController struct {
	auditService *services.AuditService
}

// NewAuditController creates a new AuditController
func NewAuditController(auditService *services.AuditService) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// ListAuditLogs godoc
// @Summary List audit entries
// @Description Retrieve the audit trail of staff case edits, newest first. Superadmin only.
// @Tags audit
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.AuditLogListResponse}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /audit-logs [get]
func (c *AuditController) ListAuditLogs(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	result, err := c.auditService.List(ctx, actor, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}
