package models

import "time"

// Message represents one entry in a case's append-only conversation log.
// Messages are immutable after creation except for IsRead, which transitions
// false -> true exactly once when somebody other than the sender opens the
// thread. Ordering within a case is by CreatedAt ascending.
type Message struct {
	ID         int64     `json:"id" db:"id" example:"1"`
	CaseID     int64     `json:"caseId" db:"case_id" example:"1"`
	SenderID   int64     `json:"senderId" db:"sender_id" example:"42"`
	SenderRole RoleType  `json:"senderRole" db:"sender_role" example:"APPLICANT"`
	Body       *string   `json:"body,omitempty" db:"body"`
	FileID     *int64    `json:"fileId,omitempty" db:"file_id"`
	IsRead     bool      `json:"isRead" db:"is_read"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	// Related entities
	Sender *User `json:"sender,omitempty"`
	File   *File `json:"file,omitempty"`
}
