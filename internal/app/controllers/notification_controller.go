package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/app/services"
	"github.com/ozgurs/applyhub/internal/middleware"
	"github.com/ozgurs/applyhub/internal/pkg/helpers"
)

// NotificationController handles bell feed endpoints
type NotificationController struct {
	notificationService *services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
	}
}

// ListNotifications godoc
// @Summary List notifications
// @Description Retrieve the acting user's feed, most recently updated first. Collapsed chat bursts appear as a single entry whose message carries the event count.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param unreadOnly query bool false "Only unread entries"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.NotificationListResponse}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /notifications [get]
func (c *NotificationController) ListNotifications(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	req := dto.ListNotificationsRequest{
		UnreadOnly: ctx.Query("unreadOnly") == "true",
		Page:       page,
		PageSize:   size,
	}

	result, err := c.notificationService.List(ctx, actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// GetUnreadCount godoc
// @Summary Get unread notification count
// @Description Returns the bell badge count for the acting user.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UnreadNotificationCountResponse}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /notifications/unread-count [get]
func (c *NotificationController) GetUnreadCount(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	count, err := c.notificationService.UnreadCount(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.UnreadNotificationCountResponse{Count: count}))
}

// MarkRead godoc
// @Summary Mark a notification read
// @Description Marks one of the acting user's notifications as read. The next chat message on that case starts a fresh notification with its counter at one.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /notifications/{id}/read [put]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	notificationID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid notification ID")))
		return
	}

	if err := c.notificationService.MarkRead(ctx, actor, notificationID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessMessageResponse("Notification marked as read"))
}

// MarkAllRead godoc
// @Summary Mark all notifications read
// @Description Marks the acting user's entire feed as read.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /notifications/read-all [put]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	if err := c.notificationService.MarkAllRead(ctx, actor); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessMessageResponse("All notifications marked as read"))
}
