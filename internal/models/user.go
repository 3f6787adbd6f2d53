package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей
const (
	RoleAdmin      = "admin"
	RoleFreelancer = "freelancer"
	RoleClient     = "client"
)

// Статусы аккаунта
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
	UserStatusBanned    = "banned"
)

// Статусы KYC проверки
const (
	KycStatusUnverified = "unverified"
	KycStatusPending    = "pending"
	KycStatusApproved   = "approved"
)

// User описывает пользователя платформы: подростка-фрилансера, заказчика или администратора.
// Статус, родительский режим и KYC читаются резолвером профиля перед каждым действием.
type User struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	Username      string     `db:"username" json:"username"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	Role          string     `db:"role" json:"role"`
	Status        string     `db:"status" json:"status"`
	ParentMode    bool       `db:"parent_mode" json:"parent_mode"`
	KycStatus     string     `db:"kyc_status" json:"kyc_status"`
	GuardianEmail *string    `db:"guardian_email" json:"guardian_email,omitempty"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	PhoneVerified bool       `db:"phone_verified" json:"phone_verified"`
	EnergyPoints  int        `db:"energy_points" json:"energy_points"`
	LastLoginAt   *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// IsAdmin сообщает, является ли пользователь администратором.
// Администраторы считаются всегда активными и освобождены от всех блокировок.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsSuspended сообщает, заблокирован ли аккаунт.
func (u *User) IsSuspended() bool {
	return u.Status == UserStatusSuspended || u.Status == UserStatusBanned
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ValidRoles список ролей, доступных при регистрации.
var ValidRoles = map[string]struct{}{
	RoleFreelancer: {},
	RoleClient:     {},
}
