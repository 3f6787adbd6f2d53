package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/teenlance/teenlance-backend/internal/goroutine"
	"github.com/teenlance/teenlance-backend/internal/logger"
	"github.com/teenlance/teenlance-backend/internal/models"
)

// NotificationStore описывает зависимость Notifier от хранилища уведомлений.
type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Broadcaster доставляет событие в открытые WebSocket соединения пользователя.
type Broadcaster interface {
	Push(userID uuid.UUID, payload []byte)
}

// Notifier рассылает уведомления по принципу fire-and-forget: сбой доставки
// никогда не откатывает и не блокирует породивший его переход.
type Notifier struct {
	store       NotificationStore
	broadcaster Broadcaster
}

func NewNotifier(store NotificationStore, broadcaster Broadcaster) *Notifier {
	return &Notifier{store: store, broadcaster: broadcaster}
}

// Notify сохраняет уведомление и проталкивает его в WebSocket.
// Выполняется в отдельной горутине с собственным таймаутом: контекст
// запроса к этому моменту может быть уже отменён.
func (n *Notifier) Notify(userID uuid.UUID, event string, data map[string]any) {
	payload, err := json.Marshal(map[string]any{
		"type": event,
		"data": data,
	})
	if err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"user_id": userID,
			"event":   event,
		}).Error("notifier: не удалось сериализовать уведомление")
		return
	}

	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		notification := &models.Notification{
			UserID:  userID,
			Payload: payload,
		}
		if err := n.store.Create(ctx, notification); err != nil {
			logger.Log.WithFields(map[string]interface{}{
				"user_id": userID,
				"event":   event,
				"error":   err.Error(),
			}).Warn("notifier: не удалось сохранить уведомление")
		}

		if n.broadcaster != nil {
			n.broadcaster.Push(userID, payload)
		}
	})
}
