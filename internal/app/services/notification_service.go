package services

import (
	"context"
	"fmt"

	"github.com/ozgurs/applyhub/internal/app/models"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/pkg/dberrors"
	"github.com/ozgurs/applyhub/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// NotificationService manages the per-user bell feed, including the collapse
// of chat-message bursts into a single counted entry.
type NotificationService struct {
	notificationRepo NotificationRepository
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo NotificationRepository, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// NotifyChatMessage records chat activity on a case for one recipient.
//
// While the recipient has an unread chat notification for the case, further
// activity increments its counter and refreshes its timestamp instead of
// inserting a new row. Once that row is read, the next message starts a fresh
// entry with a counter of one. A partial unique index keeps the invariant of
// at most one unread chat row per (recipient, case) under concurrent sends;
// the loop below absorbs both race outcomes (lost insert, lost increment).
func (s *NotificationService) NotifyChatMessage(ctx context.Context, recipientID, caseID int64, message string) error {
	for attempt := 0; attempt < 3; attempt++ {
		existing, err := s.notificationRepo.GetUnreadChatNotification(ctx, recipientID, caseID)
		if err != nil {
			return err
		}

		if existing != nil {
			updated, err := s.notificationRepo.IncrementChatNotification(ctx, existing.ID, message)
			if err != nil {
				return err
			}
			if updated {
				return nil
			}
			// The row was marked read between lookup and update. Retry; the
			// next lookup will miss and fall through to an insert.
			continue
		}

		_, err = s.notificationRepo.Create(ctx, &models.Notification{
			RecipientID: recipientID,
			CaseID:      &caseID,
			Type:        models.NotificationTypeChatMessage,
			Message:     message,
			Count:       1,
		})
		if err != nil {
			if dberrors.IsUniqueViolation(err) {
				// A concurrent sender inserted first. Retry as an increment.
				continue
			}
			return err
		}
		return nil
	}

	return fmt.Errorf("giving up on chat notification for recipient %d case %d after repeated conflicts", recipientID, caseID)
}

// Notify records a non-chat notification. Edit-type notifications are never
// collapsed; every change is an individually meaningful feed entry.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) error {
	_, err := s.notificationRepo.Create(ctx, n)
	return err
}

// List returns a page of the actor's feed, most recently updated first.
func (s *NotificationService) List(ctx context.Context, actor models.Actor, req dto.ListNotificationsRequest) (*dto.NotificationListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(req.Page, req.PageSize)

	notifications, err := s.notificationRepo.ListByRecipient(ctx, actor.ID, req.UnreadOnly, offset, limit)
	if err != nil {
		return nil, err
	}

	total, err := s.notificationRepo.CountByRecipient(ctx, actor.ID, req.UnreadOnly)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, dto.ToNotificationResponse(n))
	}

	return &dto.NotificationListResponse{
		Notifications: responses,
		Pagination:    helpers.NewPaginationInfo(total, req.Page, limit),
	}, nil
}

// UnreadCount returns the actor's bell badge count.
func (s *NotificationService) UnreadCount(ctx context.Context, actor models.Actor) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, actor.ID)
}

// MarkRead marks one of the actor's notifications as read. Marking an
// already-read notification is a no-op, not an error.
func (s *NotificationService) MarkRead(ctx context.Context, actor models.Actor, notificationID int64) error {
	return s.notificationRepo.MarkRead(ctx, actor.ID, notificationID)
}

// MarkAllRead marks the actor's entire feed as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor models.Actor) error {
	return s.notificationRepo.MarkAllRead(ctx, actor.ID)
}

// markChatNotificationRead clears the unread chat entry for a case when the
// recipient opens the conversation itself. Best effort.
func (s *NotificationService) markChatNotificationRead(ctx context.Context, recipientID, caseID int64) {
	n, err := s.notificationRepo.GetUnreadChatNotification(ctx, recipientID, caseID)
	if err != nil {
		s.logger.Error().Err(err).Int64("recipientId", recipientID).Int64("caseId", caseID).
			Msg("Failed to look up chat notification on thread open")
		return
	}
	if n == nil {
		return
	}
	if err := s.notificationRepo.MarkRead(ctx, recipientID, n.ID); err != nil {
		s.logger.Error().Err(err).Int64("notificationId", n.ID).
			Msg("Failed to mark chat notification read on thread open")
	}
}
