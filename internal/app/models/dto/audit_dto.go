package dto

import (
	"encoding/json"
	"time"

	"github.com/ozgurs/applyhub/internal/app/models"
)

// AuditLogResponse is the API shape of one audit entry.
type AuditLogResponse struct {
	ID        int64           `json:"id" example:"1"`
	ActorID   int64           `json:"actorId" example:"7"`
	CaseID    int64           `json:"caseId" example:"1"`
	Action    string          `json:"action" example:"case_update"`
	Details   json.RawMessage `json:"details,omitempty" swaggertype:"string"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ToAuditLogResponse converts a models.AuditLog to its API shape.
func ToAuditLogResponse(l *models.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:        l.ID,
		ActorID:   l.ActorID,
		CaseID:    l.CaseID,
		Action:    l.Action,
		Details:   json.RawMessage(l.Details),
		CreatedAt: l.CreatedAt,
	}
}

// AuditLogListResponse is a paginated audit trail.
type AuditLogListResponse struct {
	Entries    []AuditLogResponse `json:"entries"`
	Pagination PaginationInfo     `json:"pagination"`
}
