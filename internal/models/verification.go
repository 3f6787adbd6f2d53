package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	VerificationTypeEmail = "email"
	VerificationTypePhone = "phone"
)

// Статусы KYC заявок
const (
	KycRequestStatusPending  = "pending"
	KycRequestStatusApproved = "approved"
	KycRequestStatusRejected = "rejected"
)

// VerificationCode — одноразовый код подтверждения email или телефона.
type VerificationCode struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Code      string    `db:"code" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	Used      bool      `db:"used" json:"used"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// KycRequest — заявка на проверку личности. Одобрение переводит
// kyc_status пользователя в approved и открывает финансовые действия.
type KycRequest struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	UserID       uuid.UUID  `db:"user_id" json:"user_id"`
	DocumentType string     `db:"document_type" json:"document_type"`
	Status       string     `db:"status" json:"status"`
	Comment      *string    `db:"comment" json:"comment,omitempty"`
	ReviewedBy   *uuid.UUID `db:"reviewed_by" json:"reviewed_by,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	ReviewedAt   *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
}
