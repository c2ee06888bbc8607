package services

import (
	"context"

	"github.com/ozgurs/applyhub/internal/app/models"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/app/repositories"
	"github.com/ozgurs/applyhub/internal/pkg/email"
	"github.com/ozgurs/applyhub/internal/pkg/filestorage"
	"github.com/rs/zerolog"
)

// The services depend on narrow repository interfaces rather than the
// concrete pgx types so that business rules can be tested against in-memory
// fakes. The concrete repositories in internal/app/repositories satisfy them.

// UserRepository provides user lookups for services.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindStaff(ctx context.Context) ([]*models.User, error)
}

// CaseRepository provides case persistence for services.
type CaseRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Case, error)
	GetByApplicantID(ctx context.Context, applicantID int64) (*models.Case, error)
	List(ctx context.Context, filter repositories.CaseListFilter) ([]*models.Case, error)
	Count(ctx context.Context, filter repositories.CaseListFilter) (int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	TryAssign(ctx context.Context, caseID, staffID int64) (bool, error)
}

// MessageRepository provides conversation persistence for services.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) (int64, error)
	ListByCase(ctx context.Context, caseID int64) ([]*models.Message, error)
	MarkReadExceptSender(ctx context.Context, caseID, viewerID int64) error
	UnreadApplicantCounts(ctx context.Context) (map[int64]int, error)
	UnreadApplicantCountsUnassigned(ctx context.Context) (map[int64]int, error)
	UnreadApplicantCountsForOwner(ctx context.Context, staffID int64) (map[int64]int, error)
}

// NotificationRepository provides bell-feed persistence for services.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) (int64, error)
	GetUnreadChatNotification(ctx context.Context, recipientID, caseID int64) (*models.Notification, error)
	IncrementChatNotification(ctx context.Context, id int64, message string) (bool, error)
	ListByRecipient(ctx context.Context, recipientID int64, unreadOnly bool, offset uint64, limit int) ([]*models.Notification, error)
	CountByRecipient(ctx context.Context, recipientID int64, unreadOnly bool) (int64, error)
	CountUnread(ctx context.Context, recipientID int64) (int64, error)
	MarkRead(ctx context.Context, recipientID, notificationID int64) error
	MarkAllRead(ctx context.Context, recipientID int64) error
}

// AuditLogRepository provides audit-trail persistence for services.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) (int64, error)
	List(ctx context.Context, offset uint64, limit int) ([]*models.AuditLog, error)
	Count(ctx context.Context) (int64, error)
}

// FileRepository provides attachment metadata persistence for services.
type FileRepository interface {
	Create(ctx context.Context, file *models.File) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.File, error)
}

// UnreadCacheStore caches computed unread summaries per user. Optional: a nil
// store means every summary request hits the database.
type UnreadCacheStore interface {
	Get(ctx context.Context, userID int64) (*dto.UnreadSummaryResponse, error)
	Set(ctx context.Context, userID int64, summary *dto.UnreadSummaryResponse) error
	Invalidate(ctx context.Context, userIDs ...int64) error
}

// Services holds all the service instances
type Services struct {
	CaseService         *CaseService
	ChatService         *ChatService
	FileService         *FileService
	NotificationService *NotificationService
	UnreadService       *UnreadService
	AuditService        *AuditService
}

// NewServices initializes all services with their dependencies. unreadCache
// may be nil when Redis is not configured.
func NewServices(
	repos *repositories.Repositories,
	mailer email.Mailer,
	unreadCache UnreadCacheStore,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) *Services {
	notificationService := NewNotificationService(repos.NotificationRepository, logger)

	return &Services{
		CaseService: NewCaseService(
			repos.CaseRepository,
			repos.UserRepository,
			repos.AuditLogRepository,
			notificationService,
			mailer,
			logger,
		),
		ChatService: NewChatService(
			repos.CaseRepository,
			repos.MessageRepository,
			repos.UserRepository,
			repos.FileRepository,
			notificationService,
			unreadCache,
			logger,
		),
		FileService:         NewFileService(repos.FileRepository, storage, logger),
		NotificationService: notificationService,
		UnreadService: NewUnreadService(
			repos.MessageRepository,
			unreadCache,
			logger,
		),
		AuditService: NewAuditService(repos.AuditLogRepository, logger),
	}
}
