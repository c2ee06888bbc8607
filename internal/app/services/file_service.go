package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/ozgurs/applyhub/internal/app/models"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/pkg/apperrors"
	"github.com/ozgurs/applyhub/internal/pkg/filestorage"
	"github.com/rs/zerolog"
)

const (
	maxUploadSize = 10 << 20 // 10 MiB

	attachmentSubPath = "attachments"
)

// FileService handles attachment uploads. Uploading only stores bytes and
// metadata; an attachment becomes visible to anyone once a message
// references it.
type FileService struct {
	fileRepo FileRepository
	storage  filestorage.FileStorage
	logger   zerolog.Logger
}

// NewFileService creates a new FileService
func NewFileService(fileRepo FileRepository, storage filestorage.FileStorage, logger zerolog.Logger) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
		logger:   logger,
	}
}

// Upload stores an uploaded file and records its metadata under the actor's
// id. The returned response carries the file id to reference from a message.
func (s *FileService) Upload(ctx context.Context, actor models.Actor, fileHeader *multipart.FileHeader) (*dto.FileResponse, error) {
	if fileHeader == nil || fileHeader.Filename == "" {
		return nil, apperrors.NewValidationError("No file provided")
	}
	if fileHeader.Size > maxUploadSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("File exceeds the maximum size of %d MB", maxUploadSize>>20))
	}

	fileURL, err := s.storage.SaveFileWithPath(fileHeader, attachmentSubPath)
	if err != nil {
		s.logger.Error().Err(err).Str("fileName", fileHeader.Filename).Msg("Failed to store uploaded file")
		return nil, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	file := &models.File{
		FileName:   fileHeader.Filename,
		FilePath:   filepath.Join(attachmentSubPath, filepath.Base(fileURL)),
		FileURL:    fileURL,
		FileSize:   fileHeader.Size,
		FileType:   fileHeader.Header.Get("Content-Type"),
		UploadedBy: actor.ID,
	}
	if _, err := s.fileRepo.Create(ctx, file); err != nil {
		// Metadata is the source of truth; orphaned bytes are cleaned up so
		// storage does not accumulate unreferenced files.
		if delErr := s.storage.DeleteFile(file.FilePath); delErr != nil {
			s.logger.Error().Err(delErr).Str("filePath", file.FilePath).Msg("Failed to clean up stored file")
		}
		return nil, err
	}

	s.logger.Info().Int64("fileId", file.ID).Int64("uploadedBy", actor.ID).
		Str("fileName", file.FileName).Msg("Attachment uploaded")

	return &dto.FileResponse{
		ID:       file.ID,
		FileName: file.FileName,
		FileURL:  file.FileURL,
		FileSize: file.FileSize,
		FileType: file.FileType,
	}, nil
}
