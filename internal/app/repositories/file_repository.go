package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ozgurs/applyhub/internal/app/models"
	"github.com/ozgurs/applyhub/internal/pkg/apperrors"
)

// FileRepository handles database operations for attachment metadata
type FileRepository struct {
	db *pgxpool.Pool
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts metadata for a stored file
func (r *FileRepository) Create(ctx context.Context, file *models.File) (int64, error) {
	query := `
		INSERT INTO files (file_name, file_path, file_url, file_size, file_type, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		file.FileName,
		file.FilePath,
		file.FileURL,
		file.FileSize,
		file.FileType,
		file.UploadedBy,
	).Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("error creating file record: %w", err)
	}

	return file.ID, nil
}

// GetByID retrieves file metadata by id
func (r *FileRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	query := `
		SELECT id, file_name, file_path, file_url, file_size, file_type, uploaded_by, created_at
		FROM files
		WHERE id = $1
	`

	var file models.File
	err := r.db.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.FileName,
		&file.FilePath,
		&file.FileURL,
		&file.FileSize,
		&file.FileType,
		&file.UploadedBy,
		&file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("File not found")
		}
		return nil, fmt.Errorf("error retrieving file: %w", err)
	}

	return &file, nil
}
