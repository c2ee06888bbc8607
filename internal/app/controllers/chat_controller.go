package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/app/services"
	"github.com/ozgurs/applyhub/internal/middleware"
)

// ChatController handles per-case conversation endpoints
type ChatController struct {
	chatService *services.ChatService
}

// NewChatController creates a new ChatController
func NewChatController(chatService *services.ChatService) *ChatController {
	return &ChatController{
		chatService: chatService,
	}
}

// OpenThread godoc
// @Summary Open a case's conversation
// @Description Returns the ordered message log. Opening the thread marks the other party's messages as read and, for a regular staff member opening an unassigned case, claims the case. A non-owning staff viewer gets the thread read-only with the owner's name.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Case ID"
// @Success 200 {object} dto.APIResponse{data=dto.ThreadResponse}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /cases/{id}/messages [get]
func (c *ChatController) OpenThread(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	caseID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid case ID")))
		return
	}

	thread, err := c.chatService.OpenThread(ctx, actor, caseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(thread))
}

// SendMessage godoc
// @Summary Send a message
// @Description Append a message to the case's conversation. A message needs a body, a file attachment, or both. A regular staff member writing to an unassigned case claims it; writing to a case owned by someone else is rejected with the owner's name.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Case ID"
// @Param request body dto.SendMessageRequest true "Message content"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail} "Empty message"
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail} "Case owned by another staff member"
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /cases/{id}/messages [post]
func (c *ChatController) SendMessage(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	caseID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid case ID")))
		return
	}

	var req dto.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body").WithDetails(err.Error())))
		return
	}

	message, err := c.chatService.SendMessage(ctx, actor, caseID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(message))
}
