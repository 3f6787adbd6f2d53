package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Статусы escrow ордеров
const (
	EscrowOrderStatusPending  = "pending"
	EscrowOrderStatusReleased = "released"
	EscrowOrderStatusRefunded = "refunded"
)

// Типы записей платёжного журнала
const (
	PaymentEntryRelease = "release"
	PaymentEntryRefund  = "refund"
)

// EscrowOrder представляет платёжную запись, привязанную к отклику.
// В идеале существует ровно один ордер на отклик; при пропусках данных
// сверка создаёт теневой ордер (is_shadow = true), чтобы не потерять след.
type EscrowOrder struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	ApplicationID uuid.UUID  `db:"application_id" json:"application_id"`
	Amount        float64    `db:"amount" json:"amount"`
	Status        string     `db:"status" json:"status"`
	IsShadow      bool       `db:"is_shadow" json:"is_shadow"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	ReleasedAt    *time.Time `db:"released_at" json:"released_at,omitempty"`
}

// PaymentLogEntry — неизменяемая запись аудита финансового события.
// Никогда не обновляется и не удаляется после вставки.
type PaymentLogEntry struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	OrderID       uuid.UUID       `db:"order_id" json:"order_id"`
	ApplicationID uuid.UUID       `db:"application_id" json:"application_id"`
	ActorID       uuid.UUID       `db:"actor_id" json:"actor_id"`
	ActorRole     string          `db:"actor_role" json:"actor_role"`
	Action        string          `db:"action" json:"action"`
	EntryType     string          `db:"entry_type" json:"entry_type"`
	Amount        float64         `db:"amount" json:"amount"`
	Status        string          `db:"status" json:"status"`
	RawData       json.RawMessage `db:"raw_data" json:"raw_data,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
