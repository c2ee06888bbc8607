package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/app/services"
	"github.com/ozgurs/applyhub/internal/middleware"
)

// FileController handles attachment uploads
type FileController struct {
	fileService *services.FileService
}

// NewFileController creates a new FileController
func NewFileController(fileService *services.FileService) *FileController {
	return &FileController{
		fileService: fileService,
	}
}

// UploadFile godoc
// @Summary Upload a message attachment
// @Description Stores a file and returns its id for use in the fileId field of a message.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 201 {object} dto.APIResponse{data=dto.FileResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /files [post]
func (c *FileController) UploadFile(ctx *gin.Context) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "A file form field is required").WithDetails(err.Error())))
		return
	}

	file, err := c.fileService.Upload(ctx, actor, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(file))
}
