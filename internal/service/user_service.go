package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/teenlance/teenlance-backend/internal/models"
	"github.com/teenlance/teenlance-backend/internal/pkg/apperror"
	"github.com/teenlance/teenlance-backend/internal/repository"
)

// UserStore описывает зависимости UserService от слоя хранилища.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, status string) error
	UpdateParentMode(ctx context.Context, userID uuid.UUID, enabled bool) error
	UpdateContact(ctx context.Context, userID uuid.UUID, phone *string, guardianEmail *string) error
}

// UserService — профиль пользователя и административная модерация.
type UserService struct {
	repo     UserStore
	notifier TransitionNotifier
}

func NewUserService(repo UserStore, notifier TransitionNotifier) *UserService {
	return &UserService{repo: repo, notifier: notifier}
}

// GetProfile возвращает профиль пользователя.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrProfileNotFound
		}
		return nil, err
	}
	return user, nil
}

// SetParentMode включает или выключает родительский режим.
// Выключение доступно только с аккаунта опекуна, здесь проверяется лишь владение.
func (s *UserService) SetParentMode(ctx context.Context, userID uuid.UUID, enabled bool) error {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return err
	}
	return s.repo.UpdateParentMode(ctx, userID, enabled)
}

// UpdateContact обновляет контактные данные пользователя.
func (s *UserService) UpdateContact(ctx context.Context, userID uuid.UUID, phone, guardianEmail *string) error {
	return s.repo.UpdateContact(ctx, userID, phone, guardianEmail)
}

// SetAccountStatus — административная смена статуса аккаунта.
func (s *UserService) SetAccountStatus(ctx context.Context, adminID, userID uuid.UUID, status string) error {
	admin, err := s.GetProfile(ctx, adminID)
	if err != nil {
		return err
	}
	if !admin.IsAdmin() {
		return apperror.ErrForbidden
	}

	switch status {
	case models.UserStatusActive, models.UserStatusSuspended, models.UserStatusBanned:
	default:
		return apperror.New(apperror.ErrCodeValidation, "недопустимый статус аккаунта")
	}

	if err := s.repo.UpdateStatus(ctx, userID, status); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrProfileNotFound
		}
		return err
	}

	s.notifier.Notify(userID, "account_status_changed", map[string]any{
		"status": status,
	})

	return nil
}
