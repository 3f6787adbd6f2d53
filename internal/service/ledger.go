package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/teenlance/teenlance-backend/internal/logger"
	"github.com/teenlance/teenlance-backend/internal/metrics"
	"github.com/teenlance/teenlance-backend/internal/models"
	"github.com/teenlance/teenlance-backend/internal/repository"
)

// LedgerRepository описывает зависимости LedgerService от слоя хранилища.
type LedgerRepository interface {
	GetLatestOrderByApplication(ctx context.Context, applicationID uuid.UUID) (*models.EscrowOrder, error)
	CreateShadowOrder(ctx context.Context, applicationID uuid.UUID, amount float64) (*models.EscrowOrder, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.EscrowOrder, error)
	AppendLogEntry(ctx context.Context, entry *models.PaymentLogEntry) error
	ListLogByApplication(ctx context.Context, applicationID uuid.UUID, limit, offset int) ([]models.PaymentLogEntry, error)
}

// LedgerService сверяет платёжные записи с откликами и ведёт журнал.
// Обновление статуса ордера критично, запись в журнал — best effort:
// журнал не должен блокировать уже принятое финансовое решение.
type LedgerService struct {
	repo LedgerRepository
}

func NewLedgerService(repo LedgerRepository) *LedgerService {
	return &LedgerService{repo: repo}
}

// RecordMovement фиксирует освобождение или возврат средств по отклику.
// Если ордер отсутствует (пропуск данных выше по потоку), синтезируется
// теневой ордер, чтобы финансовый след не потерялся.
func (s *LedgerService) RecordMovement(ctx context.Context, app *models.Application, actor *models.User, action, entryType string) error {
	order, err := s.repo.GetLatestOrderByApplication(ctx, app.ID)
	if errors.Is(err, repository.ErrEscrowOrderNotFound) {
		order, err = s.repo.CreateShadowOrder(ctx, app.ID, app.BidAmount)
		if err != nil {
			return fmt.Errorf("ledger service: %w", err)
		}
		metrics.ShadowOrdersTotal.Inc()
		logger.Log.WithFields(map[string]interface{}{
			"application_id": app.ID,
			"order_id":       order.ID,
		}).Warn("ledger service: ордер отсутствовал, синтезирован теневой")
	} else if err != nil {
		return fmt.Errorf("ledger service: %w", err)
	}

	orderStatus := models.EscrowOrderStatusReleased
	if entryType == models.PaymentEntryRefund {
		orderStatus = models.EscrowOrderStatusRefunded
	}

	order, err = s.repo.UpdateOrderStatus(ctx, order.ID, orderStatus)
	if err != nil {
		return fmt.Errorf("ledger service: %w", err)
	}

	raw, _ := json.Marshal(map[string]any{
		"application_status": app.Status,
		"is_shadow":          order.IsShadow,
	})

	entry := &models.PaymentLogEntry{
		OrderID:       order.ID,
		ApplicationID: app.ID,
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
		Action:        action,
		EntryType:     entryType,
		Amount:        app.BidAmount,
		Status:        orderStatus,
		RawData:       raw,
	}

	// Журнал append-only; неудачная вставка логируется и проглатывается.
	if err := s.repo.AppendLogEntry(ctx, entry); err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"application_id": app.ID,
			"order_id":       order.ID,
			"entry_type":     entryType,
			"error":          err.Error(),
		}).Error("ledger service: не удалось записать журнал")
		return nil
	}

	metrics.PaymentLogEntriesTotal.WithLabelValues(entryType).Inc()
	return nil
}

// History возвращает записи журнала по отклику.
func (s *LedgerService) History(ctx context.Context, applicationID uuid.UUID, limit, offset int) ([]models.PaymentLogEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListLogByApplication(ctx, applicationID, limit, offset)
}
