package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ozgurs/applyhub/internal/app/models"
	"github.com/ozgurs/applyhub/internal/pkg/apperrors"
)

// CaseRepository handles database operations for application cases
type CaseRepository struct {
	db *pgxpool.Pool
}

// NewCaseRepository creates a new CaseRepository
func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

// CaseListFilter narrows the case list query. Nil/zero fields are ignored.
type CaseListFilter struct {
	Status          string
	Search          string // matched against applicant name and email
	From            *time.Time
	To              *time.Time
	AssignedAdminID *int64 // owner filter ("for me")
	ApplicantID     *int64 // applicants only ever see their own case
	Offset          uint64
	Limit           int
}

// caseSelect is the shared projection joining the applicant and, when
// present, the assigned admin.
func caseSelect() squirrel.SelectBuilder {
	return squirrel.Select(
		"c.id", "c.applicant_id", "c.status", "c.assigned_admin_id",
		"c.full_name", "c.phone", "c.address", "c.internal_note",
		"c.created_at", "c.updated_at",
		"u.first_name", "u.last_name", "u.email",
		"a.first_name", "a.last_name",
	).
		From("cases c").
		Join("users u ON c.applicant_id = u.id").
		LeftJoin("users a ON c.assigned_admin_id = a.id").
		PlaceholderFormat(squirrel.Dollar)
}

func scanCase(row pgx.Row) (*models.Case, error) {
	var (
		cs                    models.Case
		applicant             models.User
		adminFirst, adminLast *string
	)

	err := row.Scan(
		&cs.ID,
		&cs.ApplicantID,
		&cs.Status,
		&cs.AssignedAdminID,
		&cs.FullName,
		&cs.Phone,
		&cs.Address,
		&cs.InternalNote,
		&cs.CreatedAt,
		&cs.UpdatedAt,
		&applicant.FirstName,
		&applicant.LastName,
		&applicant.Email,
		&adminFirst,
		&adminLast,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCaseNotFound
		}
		return nil, fmt.Errorf("error scanning case row: %w", err)
	}

	applicant.ID = cs.ApplicantID
	cs.Applicant = &applicant

	if cs.AssignedAdminID != nil {
		admin := models.User{ID: *cs.AssignedAdminID}
		if adminFirst != nil {
			admin.FirstName = *adminFirst
		}
		if adminLast != nil {
			admin.LastName = *adminLast
		}
		cs.AssignedAdmin = &admin
	}

	return &cs, nil
}

// GetByID retrieves a case with its applicant and assigned admin
func (r *CaseRepository) GetByID(ctx context.Context, id int64) (*models.Case, error) {
	sql, args, err := caseSelect().Where("c.id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}
	return scanCase(r.db.QueryRow(ctx, sql, args...))
}

// GetByApplicantID retrieves the single case belonging to an applicant
func (r *CaseRepository) GetByApplicantID(ctx context.Context, applicantID int64) (*models.Case, error) {
	sql, args, err := caseSelect().Where("c.applicant_id = ?", applicantID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}
	return scanCase(r.db.QueryRow(ctx, sql, args...))
}

func applyCaseFilter(b squirrel.SelectBuilder, filter CaseListFilter) squirrel.SelectBuilder {
	if filter.Status != "" {
		b = b.Where("c.status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		b = b.Where(
			"(c.full_name ILIKE ? OR u.email ILIKE ? OR (u.first_name || ' ' || u.last_name) ILIKE ?)",
			pattern, pattern, pattern,
		)
	}
	if filter.From != nil {
		b = b.Where("c.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		b = b.Where("c.created_at <= ?", *filter.To)
	}
	if filter.AssignedAdminID != nil {
		b = b.Where("c.assigned_admin_id = ?", *filter.AssignedAdminID)
	}
	if filter.ApplicantID != nil {
		b = b.Where("c.applicant_id = ?", *filter.ApplicantID)
	}
	return b
}

// List retrieves cases matching the filter, newest first
func (r *CaseRepository) List(ctx context.Context, filter CaseListFilter) ([]*models.Case, error) {
	builder := applyCaseFilter(caseSelect(), filter).
		OrderBy("c.created_at DESC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var cases []*models.Case
	for rows.Next() {
		cs, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, cs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating case rows: %w", err)
	}

	return cases, nil
}

// Count returns the number of cases matching the filter
func (r *CaseRepository) Count(ctx context.Context, filter CaseListFilter) (int64, error) {
	builder := applyCaseFilter(
		squirrel.Select("COUNT(*)").
			From("cases c").
			Join("users u ON c.applicant_id = u.id").
			PlaceholderFormat(squirrel.Dollar),
		filter,
	)

	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting cases: %w", err)
	}
	return count, nil
}

// Create inserts a new case for an applicant
func (r *CaseRepository) Create(ctx context.Context, cs *models.Case) (int64, error) {
	query := `
		INSERT INTO cases (applicant_id, status, full_name, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		cs.ApplicantID,
		cs.Status,
		cs.FullName,
		cs.Phone,
		cs.Address,
	).Scan(&cs.ID, &cs.CreatedAt, &cs.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("error creating case: %w", err)
	}

	return cs.ID, nil
}

// UpdateFields applies a partial update. Field names must already be
// validated against the caller's allow-list.
func (r *CaseRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	builder := squirrel.Update("cases").
		SetMap(fields).
		Set("updated_at", time.Now()).
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating case: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrCaseNotFound
	}

	return nil
}

// TryAssign claims an unassigned case for a staff member. The conditional
// update is the whole point: under concurrent claims exactly one writer sees
// RowsAffected == 1 and becomes the owner; everyone else loses without
// overwriting anything.
func (r *CaseRepository) TryAssign(ctx context.Context, caseID, staffID int64) (bool, error) {
	query := `
		UPDATE cases
		SET assigned_admin_id = $1, updated_at = NOW()
		WHERE id = $2 AND assigned_admin_id IS NULL
	`

	result, err := r.db.Exec(ctx, query, staffID, caseID)
	if err != nil {
		return false, fmt.Errorf("error assigning case: %w", err)
	}

	return result.RowsAffected() == 1, nil
}
