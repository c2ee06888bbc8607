package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	CaseRepository         *CaseRepository
	MessageRepository      *MessageRepository
	NotificationRepository *NotificationRepository
	AuditLogRepository     *AuditLogRepository
	FileRepository         *FileRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		CaseRepository:         NewCaseRepository(db),
		MessageRepository:      NewMessageRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		AuditLogRepository:     NewAuditLogRepository(db),
		FileRepository:         NewFileRepository(db),
	}
}
