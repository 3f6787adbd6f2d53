package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/teenlance/teenlance-backend/internal/logger"
	"github.com/teenlance/teenlance-backend/internal/models"
	"github.com/teenlance/teenlance-backend/internal/pkg/apperror"
	"github.com/teenlance/teenlance-backend/internal/repository"
)

const verificationCodeTTL = 10 * time.Minute

// VerificationRepository описывает зависимости VerificationService от слоя хранилища.
type VerificationRepository interface {
	CreateCode(ctx context.Context, userID uuid.UUID, codeType, code string, expiresAt time.Time) (*models.VerificationCode, error)
	ConsumeCode(ctx context.Context, userID uuid.UUID, codeType, code string) (bool, error)
	CreateKycRequest(ctx context.Context, req *models.KycRequest) error
	GetKycRequest(ctx context.Context, id uuid.UUID) (*models.KycRequest, error)
	ListPendingKycRequests(ctx context.Context, limit, offset int) ([]models.KycRequest, error)
	ResolveKycRequest(ctx context.Context, id uuid.UUID, status string, reviewerID uuid.UUID, comment *string) (*models.KycRequest, error)
}

// VerificationUserStore — операции над пользователем, которые меняет верификация.
type VerificationUserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateKycStatus(ctx context.Context, userID uuid.UUID, kycStatus string) error
	UpdateContact(ctx context.Context, userID uuid.UUID, phone *string, guardianEmail *string) error
}

// CodeSender доставляет одноразовый код пользователю (email или SMS шлюз).
type CodeSender interface {
	SendCode(ctx context.Context, destination, code string) error
}

// VerificationService — подтверждение контактов и KYC процесс.
type VerificationService struct {
	repo     VerificationRepository
	users    VerificationUserStore
	sender   CodeSender
	notifier TransitionNotifier
}

func NewVerificationService(repo VerificationRepository, users VerificationUserStore, sender CodeSender, notifier TransitionNotifier) *VerificationService {
	return &VerificationService{
		repo:     repo,
		users:    users,
		sender:   sender,
		notifier: notifier,
	}
}

// RequestPhoneCode привязывает телефон и отправляет на него код подтверждения.
func (s *VerificationService) RequestPhoneCode(ctx context.Context, userID uuid.UUID, phone string) error {
	if phone == "" {
		return apperror.New(apperror.ErrCodeValidation, "телефон не может быть пустым")
	}

	if err := s.users.UpdateContact(ctx, userID, &phone, nil); err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("verification service: %w", err)
	}

	if _, err := s.repo.CreateCode(ctx, userID, models.VerificationTypePhone, code, time.Now().Add(verificationCodeTTL)); err != nil {
		return err
	}

	if s.sender != nil {
		if err := s.sender.SendCode(ctx, phone, code); err != nil {
			logger.Log.WithFields(map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("verification service: не удалось отправить код")
			return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось отправить код")
		}
	}

	return nil
}

// ConfirmPhone проверяет код. Успешная проверка помечает телефон подтверждённым.
func (s *VerificationService) ConfirmPhone(ctx context.Context, userID uuid.UUID, code string) error {
	ok, err := s.repo.ConsumeCode(ctx, userID, models.VerificationTypePhone, code)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.New(apperror.ErrCodeValidation, "код неверен или истёк")
	}
	return nil
}

// SubmitKyc создаёт заявку на проверку личности и переводит KYC статус в pending.
func (s *VerificationService) SubmitKyc(ctx context.Context, userID uuid.UUID, documentType string) (*models.KycRequest, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrProfileNotFound
		}
		return nil, err
	}

	if user.KycStatus == models.KycStatusApproved {
		return nil, apperror.New(apperror.ErrCodeConflict, "личность уже подтверждена")
	}
	if documentType == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "нужно указать тип документа")
	}

	req := &models.KycRequest{
		UserID:       userID,
		DocumentType: documentType,
		Status:       models.KycRequestStatusPending,
	}
	if err := s.repo.CreateKycRequest(ctx, req); err != nil {
		return nil, err
	}

	if err := s.users.UpdateKycStatus(ctx, userID, models.KycStatusPending); err != nil {
		return nil, err
	}

	return req, nil
}

// ListPendingKyc возвращает заявки, ожидающие решения администратора.
func (s *VerificationService) ListPendingKyc(ctx context.Context, limit, offset int) ([]models.KycRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListPendingKycRequests(ctx, limit, offset)
}

// ResolveKyc фиксирует решение администратора и обновляет статус пользователя.
func (s *VerificationService) ResolveKyc(ctx context.Context, reviewerID, requestID uuid.UUID, approve bool, comment *string) (*models.KycRequest, error) {
	status := models.KycRequestStatusRejected
	userStatus := models.KycStatusUnverified
	event := "kyc_rejected"
	if approve {
		status = models.KycRequestStatusApproved
		userStatus = models.KycStatusApproved
		event = "kyc_approved"
	}

	req, err := s.repo.ResolveKycRequest(ctx, requestID, status, reviewerID, comment)
	if err != nil {
		if errors.Is(err, repository.ErrKycRequestNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "заявка не найдена или уже рассмотрена")
		}
		return nil, err
	}

	if err := s.users.UpdateKycStatus(ctx, req.UserID, userStatus); err != nil {
		return nil, err
	}

	data := map[string]any{"request_id": req.ID}
	if comment != nil {
		data["comment"] = *comment
	}
	s.notifier.Notify(req.UserID, event, data)

	return req, nil
}

// generateCode возвращает шестизначный цифровой код.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
