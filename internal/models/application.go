package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Статусы отклика на работу. Начальный статус pending создаётся при подаче отклика.
const (
	ApplicationStatusPending   = "pending"
	ApplicationStatusAccepted  = "accepted"
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusCompleted = "completed"
	ApplicationStatusPaid      = "paid"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusCancelled = "cancelled"
	ApplicationStatusRevision  = "revision_requested"
)

// Действия над откликом. Диспетчеризуются единой таблицей переходов в сервисе.
const (
	ActionAcceptApplication = "ACCEPT_APPLICATION"
	ActionSubmitWork        = "SUBMIT_WORK"
	ActionApproveWork       = "APPROVE_WORK"
	ActionReleaseEscrow     = "RELEASE_ESCROW"
	ActionAdminForceRelease = "ADMIN_FORCE_RELEASE"
	ActionAdminForceRefund  = "ADMIN_FORCE_REFUND"
	ActionRejectApplication = "REJECT_APPLICATION"
	ActionRequestRevision   = "REQUEST_REVISION"
	ActionSubmitReview      = "SUBMIT_REVIEW"
	// ActionPay входит в список действий, ограниченных родительским режимом,
	// хотя собственного перехода у него нет: оплата проходит через платёжный шлюз.
	ActionPay = "PAY"
)

// Application описывает рабочее соглашение между заказчиком и фрилансером.
// bid_amount фиксируется при создании и никогда не принимается из payload клиента.
type Application struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	ClientID        uuid.UUID      `db:"client_id" json:"client_id"`
	FreelancerID    uuid.UUID      `db:"freelancer_id" json:"freelancer_id"`
	Title           string         `db:"title" json:"title"`
	Status          string         `db:"status" json:"status"`
	BidAmount       float64        `db:"bid_amount" json:"bid_amount"`
	IsEscrowHeld    bool           `db:"is_escrow_held" json:"is_escrow_held"`
	WorkLink        *string        `db:"work_link" json:"work_link,omitempty"`
	WorkMessage     *string        `db:"work_message" json:"work_message,omitempty"`
	WorkFiles       pq.StringArray `db:"work_files" json:"work_files,omitempty"`
	RevisionMessage *string        `db:"revision_message" json:"revision_message,omitempty"`
	RevisionCount   int            `db:"revision_count" json:"revision_count"`
	Rating          *int           `db:"rating" json:"rating,omitempty"`
	RatingTags      pq.StringArray `db:"rating_tags" json:"rating_tags,omitempty"`
	RejectionReason *string        `db:"rejection_reason" json:"rejection_reason,omitempty"`
	StartedAt       *time.Time     `db:"started_at" json:"started_at,omitempty"`
	SubmittedAt     *time.Time     `db:"submitted_at" json:"submitted_at,omitempty"`
	CompletedAt     *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
	PaidAt          *time.Time     `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// IsParticipant сообщает, является ли пользователь стороной соглашения.
func (a *Application) IsParticipant(userID uuid.UUID) bool {
	return userID == a.ClientID || userID == a.FreelancerID
}

// CounterpartyOf возвращает вторую сторону соглашения.
func (a *Application) CounterpartyOf(userID uuid.UUID) uuid.UUID {
	if userID == a.ClientID {
		return a.FreelancerID
	}
	return a.ClientID
}

// ValidApplicationStatuses список валидных статусов откликов.
var ValidApplicationStatuses = map[string]struct{}{
	ApplicationStatusPending:   {},
	ApplicationStatusAccepted:  {},
	ApplicationStatusSubmitted: {},
	ApplicationStatusCompleted: {},
	ApplicationStatusPaid:      {},
	ApplicationStatusRejected:  {},
	ApplicationStatusCancelled: {},
	ApplicationStatusRevision:  {},
}
