package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/teenlance/teenlance-backend/internal/models"
	"github.com/teenlance/teenlance-backend/internal/pkg/apperror"
)

func gateUser(role, status string, parentMode bool, kycStatus string) *models.User {
	return &models.User{
		ID:         uuid.New(),
		Role:       role,
		Status:     status,
		ParentMode: parentMode,
		KycStatus:  kycStatus,
	}
}

func TestGate_AdminBypassesEverything(t *testing.T) {
	gate := NewGate()
	admin := gateUser(models.RoleAdmin, models.UserStatusSuspended, true, models.KycStatusUnverified)

	for _, action := range []string{
		models.ActionReleaseEscrow,
		models.ActionApproveWork,
		models.ActionAcceptApplication,
		models.ActionPay,
	} {
		assert.NoError(t, gate.Check(admin, action), action)
	}
}

func TestGate_SuspendedBlocksAnyAction(t *testing.T) {
	gate := NewGate()

	for _, status := range []string{models.UserStatusSuspended, models.UserStatusBanned} {
		user := gateUser(models.RoleClient, status, false, models.KycStatusApproved)
		err := gate.Check(user, models.ActionSubmitReview)
		assert.Error(t, err, status)

		appErr, ok := apperror.As(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.ErrCodeAccountSuspended, appErr.Code)
		assert.True(t, appErr.SecurityBlock)
	}
}

func TestGate_SuspensionCheckedBeforeParentMode(t *testing.T) {
	gate := NewGate()
	user := gateUser(models.RoleClient, models.UserStatusSuspended, true, models.KycStatusUnverified)

	err := gate.Check(user, models.ActionReleaseEscrow)
	appErr, _ := apperror.As(err)
	assert.Equal(t, apperror.ErrCodeAccountSuspended, appErr.Code)
}

func TestGate_ParentModeRestrictedSet(t *testing.T) {
	gate := NewGate()
	user := gateUser(models.RoleClient, models.UserStatusActive, true, models.KycStatusApproved)

	for _, action := range []string{
		models.ActionApproveWork,
		models.ActionReleaseEscrow,
		models.ActionPay,
	} {
		err := gate.Check(user, action)
		assert.Error(t, err, action)

		appErr, _ := apperror.As(err)
		assert.Equal(t, apperror.ErrCodeParentModeBlock, appErr.Code)
		assert.True(t, appErr.SecurityBlock)
	}

	// Нефинансовые действия в родительском режиме доступны.
	assert.NoError(t, gate.Check(user, models.ActionSubmitWork))
	assert.NoError(t, gate.Check(user, models.ActionRequestRevision))
	assert.NoError(t, gate.Check(user, models.ActionSubmitReview))
}

func TestGate_ParentModeCheckedBeforeKyc(t *testing.T) {
	gate := NewGate()
	user := gateUser(models.RoleClient, models.UserStatusActive, true, models.KycStatusUnverified)

	// RELEASE_ESCROW попадает в оба множества, но родительский режим первее.
	err := gate.Check(user, models.ActionReleaseEscrow)
	appErr, _ := apperror.As(err)
	assert.Equal(t, apperror.ErrCodeParentModeBlock, appErr.Code)
}

func TestGate_KycRequiredSet(t *testing.T) {
	gate := NewGate()

	for _, kycStatus := range []string{models.KycStatusUnverified, models.KycStatusPending} {
		user := gateUser(models.RoleFreelancer, models.UserStatusActive, false, kycStatus)

		for _, action := range []string{models.ActionAcceptApplication, models.ActionReleaseEscrow} {
			err := gate.Check(user, action)
			assert.Error(t, err, action)

			appErr, _ := apperror.As(err)
			assert.Equal(t, apperror.ErrCodeKycRequired, appErr.Code)
			assert.True(t, appErr.KycBlock)
		}

		// Сдача работы KYC не требует.
		assert.NoError(t, gate.Check(user, models.ActionSubmitWork))
	}
}

func TestGate_ApprovedKycPasses(t *testing.T) {
	gate := NewGate()
	user := gateUser(models.RoleFreelancer, models.UserStatusActive, false, models.KycStatusApproved)

	assert.NoError(t, gate.Check(user, models.ActionAcceptApplication))
	assert.NoError(t, gate.Check(user, models.ActionReleaseEscrow))
}
