package service

import (
	"github.com/teenlance/teenlance-backend/internal/metrics"
	"github.com/teenlance/teenlance-backend/internal/models"
	"github.com/teenlance/teenlance-backend/internal/pkg/apperror"
)

// parentModeRestricted — действия, недоступные при включённом родительском режиме.
// PAY проходит через платёжный шлюз, но ограничение распространяется и на него.
var parentModeRestricted = map[string]struct{}{
	models.ActionApproveWork:   {},
	models.ActionReleaseEscrow: {},
	models.ActionPay:           {},
}

// kycRequired — действия, требующие подтверждённой личности.
var kycRequired = map[string]struct{}{
	models.ActionAcceptApplication: {},
	models.ActionReleaseEscrow:     {},
}

// Gate — последовательность compliance-проверок перед любым действием над откликом.
// Порядок фиксирован: блокировка аккаунта, родительский режим, KYC.
// Администраторы освобождены от всех проверок.
type Gate struct{}

func NewGate() *Gate {
	return &Gate{}
}

// Check возвращает первую сработавшую блокировку или nil.
func (g *Gate) Check(user *models.User, action string) error {
	if user.IsAdmin() {
		return nil
	}

	if user.IsSuspended() {
		metrics.GateRejectionsTotal.WithLabelValues("suspended").Inc()
		return apperror.ErrAccountSuspended
	}

	if user.ParentMode {
		if _, restricted := parentModeRestricted[action]; restricted {
			metrics.GateRejectionsTotal.WithLabelValues("parent_mode").Inc()
			return apperror.ErrParentModeBlock
		}
	}

	if _, needsKyc := kycRequired[action]; needsKyc && user.KycStatus != models.KycStatusApproved {
		metrics.GateRejectionsTotal.WithLabelValues("kyc").Inc()
		return apperror.ErrKycRequired
	}

	return nil
}
