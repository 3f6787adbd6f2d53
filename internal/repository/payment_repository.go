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

// ErrEscrowOrderNotFound возвращается, когда для отклика нет escrow ордера.
var ErrEscrowOrderNotFound = errors.New("escrow order not found")

// PaymentRepository отвечает за escrow ордера и платёжный журнал.
// Журнал append-only: записи никогда не обновляются и не удаляются.
type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// GetLatestOrderByApplication возвращает последний созданный ордер для отклика.
func (r *PaymentRepository) GetLatestOrderByApplication(ctx context.Context, applicationID uuid.UUID) (*models.EscrowOrder, error) {
	var order models.EscrowOrder
	err := r.db.GetContext(ctx, &order, `
		SELECT * FROM escrow_orders WHERE application_id = $1 ORDER BY created_at DESC LIMIT 1
	`, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEscrowOrderNotFound
		}
		return nil, fmt.Errorf("payment repository: get latest order %w", err)
	}
	return &order, nil
}

// CreateShadowOrder синтезирует теневой ордер, когда оригинальная запись
// отсутствует из-за пропуска в данных выше по потоку. Частичный уникальный
// индекс по application_id для pending ордеров превращает конкурентную вставку
// в возврат уже существующей строки, так что дублей не возникает.
func (r *PaymentRepository) CreateShadowOrder(ctx context.Context, applicationID uuid.UUID, amount float64) (*models.EscrowOrder, error) {
	var order models.EscrowOrder
	err := r.db.GetContext(ctx, &order, `
		INSERT INTO escrow_orders (application_id, amount, status, is_shadow)
		VALUES ($1, $2, 'pending', TRUE)
		ON CONFLICT (application_id) WHERE status = 'pending'
		DO UPDATE SET updated_at = NOW()
		RETURNING *
	`, applicationID, amount)
	if err != nil {
		return nil, fmt.Errorf("payment repository: create shadow order %w", err)
	}
	return &order, nil
}

// UpdateOrderStatus переводит ордер в released или refunded.
func (r *PaymentRepository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.EscrowOrder, error) {
	var order models.EscrowOrder
	err := r.db.GetContext(ctx, &order, `
		UPDATE escrow_orders
		SET status = $2, released_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, orderID, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEscrowOrderNotFound
		}
		return nil, fmt.Errorf("payment repository: update order status %w", err)
	}
	return &order, nil
}

// AppendLogEntry добавляет неизменяемую запись в платёжный журнал.
func (r *PaymentRepository) AppendLogEntry(ctx context.Context, entry *models.PaymentLogEntry) error {
	query := `
		INSERT INTO payment_log (order_id, application_id, actor_id, actor_role, action, entry_type, amount, status, raw_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx,
		query,
		entry.OrderID,
		entry.ApplicationID,
		entry.ActorID,
		entry.ActorRole,
		entry.Action,
		entry.EntryType,
		entry.Amount,
		entry.Status,
		entry.RawData,
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("payment repository: append log entry %w", err)
	}
	return nil
}

// ListLogByApplication возвращает записи журнала по отклику.
func (r *PaymentRepository) ListLogByApplication(ctx context.Context, applicationID uuid.UUID, limit, offset int) ([]models.PaymentLogEntry, error) {
	var entries []models.PaymentLogEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT * FROM payment_log WHERE application_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, applicationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("payment repository: list log %w", err)
	}
	return entries, nil
}
