package models

import (
	"fmt"
	"time"
)

// NotificationType classifies the event that produced a notification.
type NotificationType string

const (
	NotificationTypeChatMessage     NotificationType = "chat_message"
	NotificationTypeFieldChange     NotificationType = "field_change"
	NotificationTypeStatusChange    NotificationType = "status_change"
	NotificationTypeApplicantUpdate NotificationType = "applicant_update"
	NotificationTypeGeneral         NotificationType = "general"
)

// FieldChange records an old/new value pair for edit-type notifications.
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// Notification is one row in a recipient's bell feed.
//
// For the chat_message type at most one unread row exists per
// (recipient, case): further chat activity while that row is unread bumps
// Count and UpdatedAt in place instead of inserting, so a burst of messages
// surfaces as a single, re-sorted entry. Edit-type notifications are never
// collapsed; each one is individually meaningful.
type Notification struct {
	ID            int64                  `json:"id" db:"id" example:"1"`
	RecipientID   int64                  `json:"recipientId" db:"recipient_id" example:"7"`
	CaseID        *int64                 `json:"caseId,omitempty" db:"case_id"`
	Type          NotificationType       `json:"type" db:"type" example:"chat_message"`
	Message       string                 `json:"message" db:"message" example:"New chat messages from applicant"`
	Count         int                    `json:"count" db:"count" example:"3"`
	ChangedFields map[string]FieldChange `json:"changedFields,omitempty" db:"changed_fields"`
	IsRead        bool                   `json:"isRead" db:"is_read"`
	CreatedAt     time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time              `json:"updatedAt" db:"updated_at"`
}

// DisplayMessage renders the feed text, appending the burst counter when more
// than one event was collapsed into this row. The counter is stored as a
// structured column; it is never parsed back out of the text.
func (n *Notification) DisplayMessage() string {
	if n.Count > 1 {
		return fmt.Sprintf("%s (%d)", n.Message, n.Count)
	}
	return n.Message
}
