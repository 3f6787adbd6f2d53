package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/teenlance/teenlance-backend/internal/models"
)

var ErrKycRequestNotFound = errors.New("kyc request not found")

// VerificationRepository отвечает за одноразовые коды и KYC заявки.
type VerificationRepository struct {
	db *sqlx.DB
}

func NewVerificationRepository(db *sqlx.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// CreateCode сохраняет одноразовый код подтверждения.
func (r *VerificationRepository) CreateCode(ctx context.Context, userID uuid.UUID, codeType, code string, expiresAt time.Time) (*models.VerificationCode, error) {
	var vc models.VerificationCode
	err := r.db.GetContext(ctx, &vc, `
		INSERT INTO verification_codes (user_id, type, code, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, userID, codeType, code, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("verification repository: create code %w", err)
	}
	return &vc, nil
}

// ConsumeCode проверяет код и помечает его использованным.
// Для телефонного кода дополнительно выставляет phone_verified у пользователя.
func (r *VerificationRepository) ConsumeCode(ctx context.Context, userID uuid.UUID, codeType, code string) (bool, error) {
	var vc models.VerificationCode
	err := r.db.GetContext(ctx, &vc, `
		SELECT * FROM verification_codes
		WHERE user_id = $1 AND type = $2 AND code = $3 AND used = FALSE AND expires_at > NOW()
		ORDER BY created_at DESC LIMIT 1
	`, userID, codeType, code)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verification repository: consume code %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE verification_codes SET used = TRUE WHERE id = $1`, vc.ID); err != nil {
		return false, fmt.Errorf("verification repository: mark code used %w", err)
	}

	if codeType == models.VerificationTypePhone {
		if _, err := r.db.ExecContext(ctx, `UPDATE users SET phone_verified = TRUE, updated_at = NOW() WHERE id = $1`, userID); err != nil {
			return false, fmt.Errorf("verification repository: mark phone verified %w", err)
		}
	}

	return true, nil
}

// CreateKycRequest создаёт заявку на проверку личности.
func (r *VerificationRepository) CreateKycRequest(ctx context.Context, req *models.KycRequest) error {
	query := `
		INSERT INTO kyc_requests (user_id, document_type, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query, req.UserID, req.DocumentType, req.Status).
		Scan(&req.ID, &req.CreatedAt); err != nil {
		return fmt.Errorf("verification repository: create kyc request %w", err)
	}
	return nil
}

// GetKycRequest возвращает заявку по идентификатору.
func (r *VerificationRepository) GetKycRequest(ctx context.Context, id uuid.UUID) (*models.KycRequest, error) {
	var req models.KycRequest
	if err := r.db.GetContext(ctx, &req, `SELECT * FROM kyc_requests WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKycRequestNotFound
		}
		return nil, fmt.Errorf("verification repository: get kyc request %w", err)
	}
	return &req, nil
}

// ListPendingKycRequests возвращает заявки, ожидающие решения администратора.
func (r *VerificationRepository) ListPendingKycRequests(ctx context.Context, limit, offset int) ([]models.KycRequest, error) {
	var requests []models.KycRequest
	err := r.db.SelectContext(ctx, &requests, `
		SELECT * FROM kyc_requests WHERE status = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3
	`, models.KycRequestStatusPending, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("verification repository: list pending kyc requests %w", err)
	}
	return requests, nil
}

// ResolveKycRequest фиксирует решение администратора по заявке.
func (r *VerificationRepository) ResolveKycRequest(ctx context.Context, id uuid.UUID, status string, reviewerID uuid.UUID, comment *string) (*models.KycRequest, error) {
	var req models.KycRequest
	err := r.db.GetContext(ctx, &req, `
		UPDATE kyc_requests
		SET status = $2, reviewed_by = $3, comment = $4, reviewed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	`, id, status, reviewerID, comment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKycRequestNotFound
		}
		return nil, fmt.Errorf("verification repository: resolve kyc request %w", err)
	}
	return &req, nil
}
