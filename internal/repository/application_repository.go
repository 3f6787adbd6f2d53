package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/teenlance/teenlance-backend/internal/models"
)

var (
	// ErrApplicationNotFound возвращается, когда отклик не найден.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrEscrowNotHeld возвращается, когда средства по отклику не удерживаются.
	ErrEscrowNotHeld = errors.New("escrow not held")
	// ErrAlreadyPaid возвращается при попытке отклонить уже оплаченный отклик.
	ErrAlreadyPaid = errors.New("application already paid")
	// ErrReviewAlreadySet возвращается при повторной попытке оставить отзыв.
	ErrReviewAlreadySet = errors.New("review already set")
)

// ApplicationRepository отвечает за хранение рабочих соглашений.
type ApplicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create создаёт соглашение и связанный escrow ордер в одной транзакции.
// Сумма фиксируется здесь и дальше никогда не читается из клиентского payload.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) (*models.EscrowOrder, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO applications (client_id, freelancer_id, title, status, bid_amount, is_escrow_held)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, app.ClientID, app.FreelancerID, app.Title, app.Status, app.BidAmount, app.IsEscrowHeld).
		Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("application repository: create %w", err)
	}

	var order models.EscrowOrder
	err = tx.GetContext(ctx, &order, `
		INSERT INTO escrow_orders (application_id, amount, status)
		VALUES ($1, $2, 'pending')
		RETURNING *
	`, app.ID, app.BidAmount)
	if err != nil {
		return nil, fmt.Errorf("application repository: create escrow order %w", err)
	}

	return &order, tx.Commit()
}

// GetByID возвращает соглашение по идентификатору.
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := r.db.GetContext(ctx, &app, `SELECT * FROM applications WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: get by id %w", err)
	}
	return &app, nil
}

// ListByUser возвращает соглашения пользователя: как заказчика и как исполнителя.
func (r *ApplicationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Application, []models.Application, error) {
	var asClient []models.Application
	err := r.db.SelectContext(ctx, &asClient, `
		SELECT * FROM applications WHERE client_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("application repository: list as client %w", err)
	}

	var asFreelancer []models.Application
	err = r.db.SelectContext(ctx, &asFreelancer, `
		SELECT * FROM applications WHERE freelancer_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("application repository: list as freelancer %w", err)
	}

	return asClient, asFreelancer, nil
}

// Accept переводит соглашение в работу. Время старта ставится ровно один раз.
func (r *ApplicationRepository) Accept(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := r.db.GetContext(ctx, &app, `
		UPDATE applications
		SET status = $2, started_at = COALESCE(started_at, NOW()), updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, models.ApplicationStatusAccepted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: accept %w", err)
	}
	return &app, nil
}

// SubmitWork сохраняет артефакты работы и переводит соглашение в submitted.
func (r *ApplicationRepository) SubmitWork(ctx context.Context, id uuid.UUID, link, message *string, files []string) (*models.Application, error) {
	var app models.Application
	err := r.db.GetContext(ctx, &app, `
		UPDATE applications
		SET status = $2, work_link = $3, work_message = $4, work_files = $5,
		    submitted_at = COALESCE(submitted_at, NOW()), updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, models.ApplicationStatusSubmitted, link, message, pq.Array(files))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: submit work %w", err)
	}
	return &app, nil
}

// ApproveWork переводит соглашение в completed.
func (r *ApplicationRepository) ApproveWork(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := r.db.GetContext(ctx, &app, `
		UPDATE applications
		SET status = $2, completed_at = COALESCE(completed_at, NOW()), updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, models.ApplicationStatusCompleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: approve work %w", err)
	}
	return &app, nil
}

// MarkPaid атомарно освобождает эскроу и переводит соглашение в paid.
// Условие is_escrow_held = TRUE в самом UPDATE гарантирует, что из двух
// конкурентных освобождений пройдёт ровно одно: проигравший получит
// ErrEscrowNotHeld, а не второе списание.
func (r *ApplicationRepository) MarkPaid(ctx context.Context, id uuid.UUID, adminNote *string) (*models.Application, error) {
	var app models.Application
	err := r.db.GetContext(ctx, &app, `
		UPDATE applications
		SET status = $2, is_escrow_held = FALSE,
		    paid_at = COALESCE(paid_at, NOW()),
		    rejection_reason = COALESCE($3, rejection_reason),
		    updated_at = NOW()
		WHERE id = $1 AND is_escrow_held = TRUE
		RETURNING *
	`, id, models.ApplicationStatusPaid, adminNote)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEscrowNotHeld
		}
		return nil, fmt.Errorf("application repository: mark paid %w", err)
	}
	return &app, nil
}

// CancelWithRefund атомарно снимает удержание и переводит соглашение в cancelled.
// Тот же compare-and-swap по is_escrow_held, что и в MarkPaid.
func (r *ApplicationRepository) CancelWithRefund(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	err := r.db.GetContext(ctx, &app, `
		UPDATE applications
		SET status = $2, is_escrow_held = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_escrow_held = TRUE
		RETURNING *
	`, id, models.ApplicationStatusCancelled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEscrowNotHeld
		}
		return nil, fmt.Errorf("application repository: cancel with refund %w", err)
	}
	return &app, nil
}

// Reject отклоняет работу. Возвращает, удерживались ли средства на момент
// отклонения: от этого зависит, нужен ли возврат. Блокировка строки FOR UPDATE
// не даёт параллельному освобождению эскроу вклиниться между чтением и записью.
func (r *ApplicationRepository) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Application, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var current models.Application
	err = tx.GetContext(ctx, &current, `SELECT * FROM applications WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrApplicationNotFound
		}
		return nil, false, fmt.Errorf("application repository: reject lock %w", err)
	}

	if current.Status == models.ApplicationStatusPaid {
		return nil, false, ErrAlreadyPaid
	}

	wasHeld := current.IsEscrowHeld

	var app models.Application
	err = tx.GetContext(ctx, &app, `
		UPDATE applications
		SET status = $2, rejection_reason = $3, is_escrow_held = FALSE, updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, models.ApplicationStatusRejected, reason)
	if err != nil {
		return nil, false, fmt.Errorf("application repository: reject %w", err)
	}

	return &app, wasHeld, tx.Commit()
}

// RequestRevision увеличивает счётчик доработок атомарным инкрементом.
func (r *ApplicationRepository) RequestRevision(ctx context.Context, id uuid.UUID, message string) (*models.Application, error) {
	var app models.Application
	err := r.db.GetContext(ctx, &app, `
		UPDATE applications
		SET status = $2, revision_message = $3, revision_count = revision_count + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, models.ApplicationStatusRevision, message)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application repository: request revision %w", err)
	}
	return &app, nil
}

// SetReview сохраняет оценку и теги. Условие rating IS NULL гарантирует,
// что отзыв ставится не более одного раза за соглашение.
func (r *ApplicationRepository) SetReview(ctx context.Context, id uuid.UUID, rating int, tags []string) (*models.Application, error) {
	var app models.Application
	err := r.db.GetContext(ctx, &app, `
		UPDATE applications
		SET rating = $2, rating_tags = $3, updated_at = NOW()
		WHERE id = $1 AND rating IS NULL
		RETURNING *
	`, id, rating, pq.Array(tags))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewAlreadySet
		}
		return nil, fmt.Errorf("application repository: set review %w", err)
	}
	return &app, nil
}
