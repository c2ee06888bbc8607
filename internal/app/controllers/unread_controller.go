package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/app/services"
	"github.com/ozgurs/applyhub/internal/middleware"
)

// UnreadController handles the staff dashboard unread summary endpoint
type UnreadController struct {
	unreadService *services.UnreadService
}

// NewUnreadController creates a new UnreadController
func NewUnreadController(unreadService *services.UnreadService) *UnreadController {
	return &UnreadController{
		unreadService: unreadService,
	}
}

// GetUnreadSummary godoc
// @Summary Get the unread message summary
// @Description Per-case unread applicant-message counts split into the claimable pool ("all") and the acting staff member's own cases ("forMe"). For superadmins both maps cover every case. Clients poll this endpoint.
// @Tags unread
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UnreadSummaryResponse}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail} "Staff only"
// @Router /me/unread [get]
func (c *UnreadController) GetUnreadSummary(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	summary, err := c.unreadService.GetUnreadSummary(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(summary))
}
