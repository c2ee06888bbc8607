package dto

import (
	"time"

	"github.com/ozgurs/applyhub/internal/app/models"
)

// ListNotificationsRequest carries feed pagination and filters.
type ListNotificationsRequest struct {
	UnreadOnly bool
	Page       int
	PageSize   int
}

// NotificationResponse is one row of the bell feed. Message already includes
// the burst counter suffix when more than one chat event was collapsed.
type NotificationResponse struct {
	ID            int64                         `json:"id" example:"1"`
	CaseID        *int64                        `json:"caseId,omitempty" example:"1"`
	Type          models.NotificationType       `json:"type" example:"chat_message"`
	Message       string                        `json:"message" example:"New chat messages from applicant (3)"`
	Count         int                           `json:"count" example:"3"`
	ChangedFields map[string]models.FieldChange `json:"changedFields,omitempty"`
	IsRead        bool                          `json:"isRead"`
	CreatedAt     time.Time                     `json:"createdAt"`
	UpdatedAt     time.Time                     `json:"updatedAt"`
}

// ToNotificationResponse converts a models.Notification to its API shape.
func ToNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            n.ID,
		CaseID:        n.CaseID,
		Type:          n.Type,
		Message:       n.DisplayMessage(),
		Count:         n.Count,
		ChangedFields: n.ChangedFields,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
	}
}

// NotificationListResponse is a paginated bell feed.
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Pagination    PaginationInfo         `json:"pagination"`
}

// UnreadNotificationCountResponse is the bell badge payload.
type UnreadNotificationCountResponse struct {
	Count int64 `json:"unreadCount" example:"4"`
}
