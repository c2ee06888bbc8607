package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ozgurs/applyhub/internal/app/models"
)

// AuditLogRepository handles database operations for the audit trail
type AuditLogRepository struct {
	db *pgxpool.Pool
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(db *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create inserts a new audit entry
func (r *AuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) (int64, error) {
	query := `
		INSERT INTO audit_logs (actor_id, case_id, action, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		entry.ActorID,
		entry.CaseID,
		entry.Action,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("error creating audit entry: %w", err)
	}

	return entry.ID, nil
}

// List retrieves a page of the audit trail, newest first
func (r *AuditLogRepository) List(ctx context.Context, offset uint64, limit int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, actor_id, case_id, action, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.CaseID,
			&entry.Action,
			&entry.Details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning audit row: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}

	return entries, nil
}

// Count returns the number of audit entries
func (r *AuditLogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting audit entries: %w", err)
	}
	return count, nil
}
