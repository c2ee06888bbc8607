package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ozgurs/applyhub/internal/app/models"
	"github.com/ozgurs/applyhub/internal/pkg/apperrors"
)

// NotificationRepository handles database operations for bell notifications
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, recipient_id, case_id, type, message, count, changed_fields, is_read, created_at, updated_at`

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	var changedFields []byte

	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.CaseID,
		&n.Type,
		&n.Message,
		&n.Count,
		&changedFields,
		&n.IsRead,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("error scanning notification row: %w", err)
	}

	if len(changedFields) > 0 {
		if err := json.Unmarshal(changedFields, &n.ChangedFields); err != nil {
			return nil, fmt.Errorf("error decoding changed fields: %w", err)
		}
	}

	return &n, nil
}

// Create inserts a new notification row
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (int64, error) {
	var changedFields []byte
	if n.ChangedFields != nil {
		var err error
		changedFields, err = json.Marshal(n.ChangedFields)
		if err != nil {
			return 0, fmt.Errorf("error encoding changed fields: %w", err)
		}
	}

	if n.Count == 0 {
		n.Count = 1
	}

	query := `
		INSERT INTO notifications (recipient_id, case_id, type, message, count, changed_fields)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_read, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		n.RecipientID,
		n.CaseID,
		n.Type,
		n.Message,
		n.Count,
		changedFields,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("error creating notification: %w", err)
	}

	return n.ID, nil
}

// GetUnreadChatNotification returns the unread chat_message notification for
// a (recipient, case) pair, or nil when none exists. A partial unique index
// guarantees there is at most one.
func (r *NotificationRepository) GetUnreadChatNotification(ctx context.Context, recipientID, caseID int64) (*models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1 AND case_id = $2 AND type = $3 AND is_read = FALSE
		ORDER BY updated_at DESC
		LIMIT 1
	`

	n, err := scanNotification(r.db.QueryRow(ctx, query, recipientID, caseID, models.NotificationTypeChatMessage))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotificationNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

// IncrementChatNotification bumps the burst counter and refreshes the message
// and timestamp of a still-unread notification, re-surfacing it at the top of
// a time-ordered feed. Returns false when the row was concurrently marked
// read (the caller should insert a fresh row instead).
func (r *NotificationRepository) IncrementChatNotification(ctx context.Context, id int64, message string) (bool, error) {
	query := `
		UPDATE notifications
		SET count = count + 1, message = $1, updated_at = NOW()
		WHERE id = $2 AND is_read = FALSE
	`

	result, err := r.db.Exec(ctx, query, message, id)
	if err != nil {
		return false, fmt.Errorf("error incrementing notification: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// ListByRecipient retrieves a page of a recipient's feed, most recently
// updated first so collapsed bursts re-surface.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID int64, unreadOnly bool, offset uint64, limit int) ([]*models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1
	`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += `
		ORDER BY updated_at DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, recipientID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}

	return notifications, nil
}

// CountByRecipient returns the number of feed rows for pagination
func (r *NotificationRepository) CountByRecipient(ctx context.Context, recipientID int64, unreadOnly bool) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}

	var count int64
	if err := r.db.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting notifications: %w", err)
	}
	return count, nil
}

// CountUnread returns the bell badge count
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	return r.CountByRecipient(ctx, recipientID, true)
}

// MarkRead marks one notification as read. The recipient check keeps users
// from acknowledging someone else's feed.
func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID, notificationID int64) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, updated_at = NOW()
		WHERE id = $1 AND recipient_id = $2 AND is_read = FALSE
	`

	result, err := r.db.Exec(ctx, query, notificationID, recipientID)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Either unknown id, someone else's row, or already read. Distinguish
		// existence for a correct 404.
		var exists bool
		checkErr := r.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM notifications WHERE id = $1 AND recipient_id = $2)`,
			notificationID, recipientID,
		).Scan(&exists)
		if checkErr != nil {
			return fmt.Errorf("error checking notification: %w", checkErr)
		}
		if !exists {
			return apperrors.ErrNotificationNotFound
		}
	}

	return nil
}

// MarkAllRead marks every unread notification of a recipient as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID int64) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, updated_at = NOW()
		WHERE recipient_id = $1 AND is_read = FALSE
	`

	if _, err := r.db.Exec(ctx, query, recipientID); err != nil {
		return fmt.Errorf("error marking all notifications read: %w", err)
	}
	return nil
}
