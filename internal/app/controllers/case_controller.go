package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/app/services"
	"github.com/ozgurs/applyhub/internal/middleware"
	"github.com/ozgurs/applyhub/internal/pkg/helpers"
)

// CaseController handles application case endpoints
type CaseController struct {
	caseService *services.CaseService
}

// NewCaseController creates a new CaseController
func NewCaseController(caseService *services.CaseService) *CaseController {
	return &CaseController{
		caseService: caseService,
	}
}

// parseTimeParam accepts RFC3339 or a bare date.
func parseTimeParam(value string) *time.Time {
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t
	}
	return nil
}

// ListCases godoc
// @Summary List application cases
// @Description Retrieve cases with optional status, free-text search, date range and ownership filters. Applicants only ever see their own case.
// @Tags cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by lifecycle status"
// @Param search query string false "Search over applicant name and email"
// @Param from query string false "Created-at lower bound (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Created-at upper bound (RFC3339 or YYYY-MM-DD)"
// @Param for_me query bool false "Only cases assigned to the acting staff member"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.CaseListResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /cases [get]
func (c *CaseController) ListCases(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	req := dto.ListCasesRequest{
		Status:   ctx.Query("status"),
		Search:   ctx.Query("search"),
		From:     parseTimeParam(ctx.Query("from")),
		To:       parseTimeParam(ctx.Query("to")),
		ForMe:    ctx.Query("for_me") == "true",
		Page:     page,
		PageSize: size,
	}

	result, err := c.caseService.ListCases(ctx, actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// GetCase godoc
// @Summary Get one case
// @Description Retrieve a single case with its applicant and owner. The internal note is hidden from applicants.
// @Tags cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Case ID"
// @Success 200 {object} dto.APIResponse{data=dto.CaseResponse}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /cases/{id} [get]
func (c *CaseController) GetCase(ctx *gin.Context) {
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

	result, err := c.caseService.GetCase(ctx, actor, caseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// UpdateCase godoc
// @Summary Update case fields
// @Description Apply a partial update. Applicants may edit their contact details; staff may additionally set the status and the internal note. Status changes notify and email the applicant; a regular staff member editing an unassigned case claims it.
// @Tags cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Case ID"
// @Param request body dto.UpdateCaseRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.CaseResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail} "Case owned by another staff member"
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /cases/{id} [put]
func (c *CaseController) UpdateCase(ctx *gin.Context) {
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

	var req dto.UpdateCaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body").WithDetails(err.Error())))
		return
	}

	result, err := c.caseService.UpdateCase(ctx, actor, caseID, req.Fields)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}
