package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ozgurs/applyhub/internal/app/models"
)

// MessageRepository handles database operations for case conversation logs
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message to a case's log
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) (int64, error) {
	query := `
		INSERT INTO messages (case_id, sender_id, sender_role, body, file_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_read, created_at
	`

	err := r.db.QueryRow(ctx, query,
		message.CaseID,
		message.SenderID,
		message.SenderRole,
		message.Body,
		message.FileID,
	).Scan(&message.ID, &message.IsRead, &message.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("error creating message: %w", err)
	}

	return message.ID, nil
}

// ListByCase retrieves the full ordered log for a case. Ordering is by the
// insertion timestamp, not request arrival order; concurrent sends may commit
// in either order and clients rely on this sort.
func (r *MessageRepository) ListByCase(ctx context.Context, caseID int64) ([]*models.Message, error) {
	query := `
		SELECT
			m.id, m.case_id, m.sender_id, m.sender_role, m.body, m.file_id,
			m.is_read, m.created_at,
			u.first_name, u.last_name,
			f.id, f.file_name, f.file_url, f.file_type, f.file_size
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		LEFT JOIN files f ON m.file_id = f.id
		WHERE m.case_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var (
			message           models.Message
			sender            models.User
			fileID, fileSize  *int64
			fileName, fileURL *string
			fileType          *string
		)

		err := rows.Scan(
			&message.ID,
			&message.CaseID,
			&message.SenderID,
			&message.SenderRole,
			&message.Body,
			&message.FileID,
			&message.IsRead,
			&message.CreatedAt,
			&sender.FirstName,
			&sender.LastName,
			&fileID,
			&fileName,
			&fileURL,
			&fileType,
			&fileSize,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}

		sender.ID = message.SenderID
		message.Sender = &sender

		if fileID != nil {
			file := models.File{ID: *fileID}
			if fileName != nil {
				file.FileName = *fileName
			}
			if fileURL != nil {
				file.FileURL = *fileURL
			}
			if fileType != nil {
				file.FileType = *fileType
			}
			if fileSize != nil {
				file.FileSize = *fileSize
			}
			message.File = &file
		}

		messages = append(messages, &message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return messages, nil
}

// MarkReadExceptSender flips the read flag on every unread message in a case
// that was not sent by the viewer. The flag only ever goes false -> true;
// rows already read are untouched.
func (r *MessageRepository) MarkReadExceptSender(ctx context.Context, caseID, viewerID int64) error {
	query := `
		UPDATE messages
		SET is_read = TRUE
		WHERE case_id = $1 AND sender_id <> $2 AND is_read = FALSE
	`

	if _, err := r.db.Exec(ctx, query, caseID, viewerID); err != nil {
		return fmt.Errorf("error marking messages read: %w", err)
	}
	return nil
}

// unreadCounts runs a grouped unread-applicant-message count with an extra
// owner predicate.
func (r *MessageRepository) unreadCounts(ctx context.Context, ownerPredicate string, args ...interface{}) (map[int64]int, error) {
	query := `
		SELECT m.case_id, COUNT(*)
		FROM messages m
		JOIN cases c ON c.id = m.case_id
		WHERE m.sender_role = 'APPLICANT' AND m.is_read = FALSE` + ownerPredicate + `
		GROUP BY m.case_id
	`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying unread counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var caseID int64
		var count int
		if err := rows.Scan(&caseID, &count); err != nil {
			return nil, fmt.Errorf("error scanning unread count row: %w", err)
		}
		counts[caseID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unread count rows: %w", err)
	}

	return counts, nil
}

// UnreadApplicantCounts returns unread applicant-message counts for every case.
func (r *MessageRepository) UnreadApplicantCounts(ctx context.Context) (map[int64]int, error) {
	return r.unreadCounts(ctx, "")
}

// UnreadApplicantCountsUnassigned returns counts restricted to the claimable
// pool (cases without an owner).
func (r *MessageRepository) UnreadApplicantCountsUnassigned(ctx context.Context) (map[int64]int, error) {
	return r.unreadCounts(ctx, " AND c.assigned_admin_id IS NULL")
}

// UnreadApplicantCountsForOwner returns counts restricted to cases owned by
// the given staff member.
func (r *MessageRepository) UnreadApplicantCountsForOwner(ctx context.Context, staffID int64) (map[int64]int, error) {
	return r.unreadCounts(ctx, " AND c.assigned_admin_id = $1", staffID)
}
