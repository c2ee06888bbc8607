package dto

import (
	"time"

	"github.com/ozgurs/applyhub/internal/app/models"
)

// SendMessageRequest creates a new message in a case's conversation.
// A message must carry a body, a file attachment, or both.
type SendMessageRequest struct {
	Body   string `json:"body" example:"Could you upload your transcript?"`
	FileID *int64 `json:"fileId,omitempty" example:"12"`
}

// MessageResponse is the API shape of one chat message.
type MessageResponse struct {
	ID         int64           `json:"id" example:"1"`
	CaseID     int64           `json:"caseId" example:"1"`
	SenderID   int64           `json:"senderId" example:"42"`
	SenderRole models.RoleType `json:"senderRole" example:"APPLICANT"`
	SenderName string          `json:"senderName,omitempty" example:"John Doe"`
	Body       *string         `json:"body,omitempty"`
	File       *FileResponse   `json:"file,omitempty"`
	IsRead     bool            `json:"isRead"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// FileResponse is the API shape of a message attachment.
type FileResponse struct {
	ID       int64  `json:"id" example:"12"`
	FileName string `json:"fileName" example:"transcript.pdf"`
	FileURL  string `json:"fileUrl"`
	FileSize int64  `json:"fileSize" example:"1048576"`
	FileType string `json:"fileType" example:"application/pdf"`
}

// ToMessageResponse converts a models.Message to its API shape.
func ToMessageResponse(m *models.Message) MessageResponse {
	resp := MessageResponse{
		ID:         m.ID,
		CaseID:     m.CaseID,
		SenderID:   m.SenderID,
		SenderRole: m.SenderRole,
		Body:       m.Body,
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt,
	}
	if m.Sender != nil {
		resp.SenderName = m.Sender.DisplayName()
	}
	if m.File != nil {
		resp.File = &FileResponse{
			ID:       m.File.ID,
			FileName: m.File.FileName,
			FileURL:  m.File.FileURL,
			FileSize: m.File.FileSize,
			FileType: m.File.FileType,
		}
	}
	return resp
}

// ThreadResponse is the result of opening a case's conversation. Opening the
// thread is a compound operation: it marks the other party's messages as read
// and, for unassigned cases opened by staff, claims the case.
type ThreadResponse struct {
	CaseID          int64             `json:"caseId" example:"1"`
	Messages        []MessageResponse `json:"messages"`
	AssignedToOther bool              `json:"assignedToOther" example:"false"`
	AssignedToName  string            `json:"assignedToName,omitempty" example:"Jane Smith"`
	CanWrite        bool              `json:"canWrite" example:"true"`
}
