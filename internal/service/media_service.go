package service

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"github.com/teenlance/teenlance-backend/internal/models"
	"github.com/teenlance/teenlance-backend/internal/pkg/apperror"
	"github.com/teenlance/teenlance-backend/internal/repository"
)

// sniffLen — столько байт нужно filetype для определения типа.
const sniffLen = 261

// allowedMediaTypes — типы файлов, принимаемые при сдаче работы.
// Тип определяется по магическим байтам, а не по расширению.
var allowedMediaTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"image/webp":      {},
	"application/pdf": {},
	"application/zip": {},
}

// MediaStore описывает зависимости MediaService от слоя хранилища.
type MediaStore interface {
	Create(ctx context.Context, file *models.MediaFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.MediaFile, error)
}

// BlobStorage — физическое хранилище содержимого файлов.
type BlobStorage interface {
	Save(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (string, int64, error)
	Open(ctx context.Context, relativePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, relativePath string) error
	MaxUploadBytes() int64
}

// MediaService — загрузка и выдача файлов результатов работ.
type MediaService struct {
	repo    MediaStore
	storage BlobStorage
}

func NewMediaService(repo MediaStore, storage BlobStorage) *MediaService {
	return &MediaService{repo: repo, storage: storage}
}

// MaxUploadBytes возвращает лимит размера загружаемого файла.
func (s *MediaService) MaxUploadBytes() int64 {
	return s.storage.MaxUploadBytes()
}

// Upload проверяет тип файла по содержимому и сохраняет его.
func (s *MediaService) Upload(ctx context.Context, ownerID uuid.UUID, fileName string, r io.Reader) (*models.MediaFile, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось прочитать файл")
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || kind == types.Unknown {
		return nil, apperror.New(apperror.ErrCodeValidation, "не удалось определить тип файла")
	}
	if _, ok := allowedMediaTypes[kind.MIME.Value]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый тип файла")
	}

	path, size, err := s.storage.Save(ctx, ownerID, fileName, io.MultiReader(bytes.NewReader(head), r))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось сохранить файл")
	}

	file := &models.MediaFile{
		OwnerID:   ownerID,
		FileName:  fileName,
		MimeType:  kind.MIME.Value,
		SizeBytes: size,
		Path:      path,
	}

	if err := s.repo.Create(ctx, file); err != nil {
		_ = s.storage.Delete(ctx, path)
		return nil, err
	}

	return file, nil
}

// Get возвращает метаданные файла владельцу или администратору.
func (s *MediaService) Get(ctx context.Context, actor *models.User, fileID uuid.UUID) (*models.MediaFile, error) {
	file, err := s.repo.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "файл не найден")
		}
		return nil, err
	}
	if !actor.IsAdmin() && file.OwnerID != actor.ID {
		return nil, apperror.ErrForbidden
	}
	return file, nil
}

// Open открывает содержимое файла.
func (s *MediaService) Open(ctx context.Context, actor *models.User, fileID uuid.UUID) (*models.MediaFile, io.ReadCloser, error) {
	file, err := s.Get(ctx, actor, fileID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.Open(ctx, file.Path)
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeNotFound, "файл недоступен")
	}
	return file, rc, nil
}

// ListMy возвращает файлы пользователя.
func (s *MediaService) ListMy(ctx context.Context, ownerID uuid.UUID) ([]models.MediaFile, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}
