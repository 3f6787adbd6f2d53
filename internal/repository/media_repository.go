package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/teenlance/teenlance-backend/internal/models"
)

// ErrMediaNotFound возвращается, когда файл не найден.
var ErrMediaNotFound = errors.New("media file not found")

// MediaRepository отвечает за метаданные загруженных файлов.
type MediaRepository struct {
	db *sqlx.DB
}

func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create сохраняет метаданные файла.
func (r *MediaRepository) Create(ctx context.Context, file *models.MediaFile) error {
	query := `
		INSERT INTO media_files (owner_id, file_name, mime_type, size_bytes, path)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx,
		query,
		file.OwnerID,
		file.FileName,
		file.MimeType,
		file.SizeBytes,
		file.Path,
	).Scan(&file.ID, &file.CreatedAt); err != nil {
		return fmt.Errorf("media repository: create %w", err)
	}
	return nil
}

// GetByID возвращает метаданные файла.
func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	var file models.MediaFile
	if err := r.db.GetContext(ctx, &file, `SELECT * FROM media_files WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("media repository: get by id %w", err)
	}
	return &file, nil
}

// ListByOwner возвращает файлы пользователя.
func (r *MediaRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.MediaFile, error) {
	var files []models.MediaFile
	err := r.db.SelectContext(ctx, &files, `
		SELECT * FROM media_files WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("media repository: list by owner %w", err)
	}
	return files, nil
}
