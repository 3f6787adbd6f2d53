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

// ErrUserNotFound возвращается, когда запись пользователя не найдена.
var ErrUserNotFound = errors.New("user not found")

// ErrSessionNotFound возвращается, когда сессия по refresh токену не найдена.
var ErrSessionNotFound = errors.New("session not found")

// UserRepository отвечает за пользователей, их сессии и compliance-поля профиля.
// Роль, статус аккаунта, родительский режим и KYC живут в одной таблице users,
// поэтому резолвер профиля выполняет ровно один запрос.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, role, status, parent_mode, kyc_status, guardian_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx,
		query,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.ParentMode,
		user.KycStatus,
		user.GuardianEmail,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return fmt.Errorf("user repository: create %w", err)
	}
	return nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = $1`, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}
	return &user, nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}
	return &user, nil
}

// UpdateStatus меняет статус аккаунта (active/suspended/banned).
func (r *UserRepository) UpdateStatus(ctx context.Context, userID uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1`, userID, status)
	if err != nil {
		return fmt.Errorf("user repository: update status %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: update status rows affected %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateKycStatus меняет статус KYC проверки пользователя.
func (r *UserRepository) UpdateKycStatus(ctx context.Context, userID uuid.UUID, kycStatus string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET kyc_status = $2, updated_at = NOW() WHERE id = $1`, userID, kycStatus)
	if err != nil {
		return fmt.Errorf("user repository: update kyc status %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: update kyc status rows affected %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateParentMode включает или выключает родительский режим.
func (r *UserRepository) UpdateParentMode(ctx context.Context, userID uuid.UUID, enabled bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET parent_mode = $2, updated_at = NOW() WHERE id = $1`, userID, enabled)
	if err != nil {
		return fmt.Errorf("user repository: update parent mode %w", err)
	}
	return nil
}

// UpdateContact обновляет контактные данные пользователя.
func (r *UserRepository) UpdateContact(ctx context.Context, userID uuid.UUID, phone *string, guardianEmail *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET phone = COALESCE($2, phone), guardian_email = COALESCE($3, guardian_email), updated_at = NOW()
		WHERE id = $1
	`, userID, phone, guardianEmail)
	if err != nil {
		return fmt.Errorf("user repository: update contact %w", err)
	}
	return nil
}

// AddEnergyPoints атомарно начисляет баллы лояльности.
// Инкремент выполняется на стороне базы, чтобы конкурентные начисления не терялись.
func (r *UserRepository) AddEnergyPoints(ctx context.Context, userID uuid.UUID, points int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET energy_points = energy_points + $2, updated_at = NOW()
		WHERE id = $1
	`, userID, points)
	if err != nil {
		return fmt.Errorf("user repository: add energy points %w", err)
	}
	return nil
}

// UpdateLastLoginAt обновляет время последнего входа.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("user repository: update last login at %w", err)
	}
	return nil
}

// CreateSession сохраняет refresh сессию.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx,
		query,
		session.UserID,
		session.RefreshToken,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}
	return nil
}

// GetSessionByToken возвращает сессию по refresh токену.
func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	var session models.Session
	if err := r.db.GetContext(ctx, &session, `SELECT * FROM sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("user repository: get session %w", err)
	}
	return &session, nil
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}
	return nil
}

// ListSessions возвращает активные сессии пользователя.
func (r *UserRepository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM sessions WHERE user_id = $1 AND expires_at > NOW() ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("user repository: list sessions %w", err)
	}
	return sessions, nil
}

// DeleteSessionByID удаляет конкретную сессию пользователя.
func (r *UserRepository) DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1 AND user_id = $2`, sessionID, userID)
	if err != nil {
		return fmt.Errorf("user repository: delete session by id %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: delete session by id rows affected %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user repository: session not found")
	}
	return nil
}
