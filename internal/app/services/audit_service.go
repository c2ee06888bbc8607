package services

import (
	"context"

	"github.com/ozgurs/applyhub/internal/app/models"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/pkg/apperrors"
	"github.com/ozgurs/applyhub/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// AuditService exposes the audit trail to superadmins. Writes happen in
// CaseService as a side effect of staff edits.
type AuditService struct {
	auditRepo AuditLogRepository
	logger    zerolog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(auditRepo AuditLogRepository, logger zerolog.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// List returns a page of the audit trail, newest first.
func (s *AuditService) List(ctx context.Context, actor models.Actor, page, pageSize int) (*dto.AuditLogListResponse, error) {
	if !actor.IsSuperAdmin() {
		return nil, apperrors.NewForbiddenError("The audit trail is superadmin only")
	}

	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)
	entries, err := s.auditRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.auditRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.ToAuditLogResponse(entry))
	}

	return &dto.AuditLogListResponse{
		Entries:    responses,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}
