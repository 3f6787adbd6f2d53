package dto

import "github.com/google/uuid"

// RegisterRequest — тело POST /auth/register.
type RegisterRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required"`
	Username      string `json:"username"`
	Role          string `json:"role" binding:"required"`
	IsMinor       bool   `json:"is_minor"`
	GuardianEmail string `json:"guardian_email"`
}

// LoginRequest — тело POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest — тело POST /auth/refresh и /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateApplicationRequest — тело POST /applications.
// Сумма фиксируется здесь и не принимается ни в одном последующем действии.
type CreateApplicationRequest struct {
	FreelancerID uuid.UUID `json:"freelancer_id" binding:"required"`
	Title        string    `json:"title" binding:"required"`
	BidAmount    float64   `json:"bid_amount" binding:"required,gt=0"`
}

// ActionPayload — полезная нагрузка действия над откликом.
type ActionPayload struct {
	WorkLink    *string  `json:"work_link,omitempty"`
	WorkMessage *string  `json:"work_message,omitempty"`
	WorkFiles   []string `json:"work_files,omitempty"`
	Message     string   `json:"message,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	Rating      int      `json:"rating,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ActionRequest — тело POST /applications/:id/actions.
// Идентификатор актора берётся из JWT, не из тела запроса.
type ActionRequest struct {
	Action  string        `json:"action" binding:"required"`
	Payload ActionPayload `json:"payload"`
}

// PhoneCodeRequest — тело POST /verification/phone.
type PhoneCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// ConfirmPhoneRequest — тело POST /verification/phone/confirm.
type ConfirmPhoneRequest struct {
	Code string `json:"code" binding:"required"`
}

// KycSubmitRequest — тело POST /verification/kyc.
type KycSubmitRequest struct {
	DocumentType string `json:"document_type" binding:"required"`
}

// KycResolveRequest — тело PUT /admin/kyc/:id.
type KycResolveRequest struct {
	Approve bool    `json:"approve"`
	Comment *string `json:"comment,omitempty"`
}

// AccountStatusRequest — тело PUT /admin/users/:id/status.
type AccountStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ParentModeRequest — тело PUT /profile/parent-mode.
type ParentModeRequest struct {
	Enabled bool `json:"enabled"`
}

// ContactUpdateRequest — тело PUT /profile/contact.
type ContactUpdateRequest struct {
	Phone         *string `json:"phone,omitempty"`
	GuardianEmail *string `json:"guardian_email,omitempty"`
}
