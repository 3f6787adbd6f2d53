package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/teenlance/teenlance-backend/internal/models"
	"github.com/teenlance/teenlance-backend/internal/repository"
)

type mockLedgerRepo struct {
	mock.Mock
}

func (m *mockLedgerRepo) GetLatestOrderByApplication(ctx context.Context, applicationID uuid.UUID) (*models.EscrowOrder, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EscrowOrder), args.Error(1)
}

func (m *mockLedgerRepo) CreateShadowOrder(ctx context.Context, applicationID uuid.UUID, amount float64) (*models.EscrowOrder, error) {
	args := m.Called(ctx, applicationID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EscrowOrder), args.Error(1)
}

func (m *mockLedgerRepo) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.EscrowOrder, error) {
	args := m.Called(ctx, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EscrowOrder), args.Error(1)
}

func (m *mockLedgerRepo) AppendLogEntry(ctx context.Context, entry *models.PaymentLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockLedgerRepo) ListLogByApplication(ctx context.Context, applicationID uuid.UUID, limit, offset int) ([]models.PaymentLogEntry, error) {
	args := m.Called(ctx, applicationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentLogEntry), args.Error(1)
}

func ledgerFixture() (*models.Application, *models.User, *models.EscrowOrder) {
	app := &models.Application{
		ID:        uuid.New(),
		Status:    models.ApplicationStatusPaid,
		BidAmount: 1000,
	}
	actor := &models.User{ID: uuid.New(), Role: models.RoleClient}
	order := &models.EscrowOrder{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		Amount:        1000,
		Status:        models.EscrowOrderStatusPending,
	}
	return app, actor, order
}

func TestLedgerService_RecordMovement_Release(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewLedgerService(repo)
	ctx := context.Background()

	app, actor, order := ledgerFixture()
	released := *order
	released.Status = models.EscrowOrderStatusReleased

	repo.On("GetLatestOrderByApplication", ctx, app.ID).Return(order, nil)
	repo.On("UpdateOrderStatus", ctx, order.ID, models.EscrowOrderStatusReleased).Return(&released, nil)
	repo.On("AppendLogEntry", ctx, mock.MatchedBy(func(e *models.PaymentLogEntry) bool {
		return e.OrderID == order.ID &&
			e.ApplicationID == app.ID &&
			e.ActorID == actor.ID &&
			e.EntryType == models.PaymentEntryRelease &&
			e.Amount == float64(1000) &&
			e.Status == models.EscrowOrderStatusReleased
	})).Return(nil)

	err := svc.RecordMovement(ctx, app, actor, models.ActionReleaseEscrow, models.PaymentEntryRelease)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestLedgerService_RecordMovement_RefundStatus(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewLedgerService(repo)
	ctx := context.Background()

	app, actor, order := ledgerFixture()
	refunded := *order
	refunded.Status = models.EscrowOrderStatusRefunded

	repo.On("GetLatestOrderByApplication", ctx, app.ID).Return(order, nil)
	repo.On("UpdateOrderStatus", ctx, order.ID, models.EscrowOrderStatusRefunded).Return(&refunded, nil)
	repo.On("AppendLogEntry", ctx, mock.AnythingOfType("*models.PaymentLogEntry")).Return(nil)

	err := svc.RecordMovement(ctx, app, actor, models.ActionAdminForceRefund, models.PaymentEntryRefund)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestLedgerService_RecordMovement_SynthesizesShadowOrder(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewLedgerService(repo)
	ctx := context.Background()

	app, actor, _ := ledgerFixture()
	shadow := &models.EscrowOrder{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		Amount:        1000,
		Status:        models.EscrowOrderStatusPending,
		IsShadow:      true,
	}
	released := *shadow
	released.Status = models.EscrowOrderStatusReleased

	repo.On("GetLatestOrderByApplication", ctx, app.ID).Return(nil, repository.ErrEscrowOrderNotFound)
	repo.On("CreateShadowOrder", ctx, app.ID, float64(1000)).Return(shadow, nil)
	repo.On("UpdateOrderStatus", ctx, shadow.ID, models.EscrowOrderStatusReleased).Return(&released, nil)
	repo.On("AppendLogEntry", ctx, mock.AnythingOfType("*models.PaymentLogEntry")).Return(nil)

	err := svc.RecordMovement(ctx, app, actor, models.ActionReleaseEscrow, models.PaymentEntryRelease)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestLedgerService_RecordMovement_OrderStatusFailureIsFatal(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewLedgerService(repo)
	ctx := context.Background()

	app, actor, order := ledgerFixture()

	repo.On("GetLatestOrderByApplication", ctx, app.ID).Return(order, nil)
	repo.On("UpdateOrderStatus", ctx, order.ID, models.EscrowOrderStatusReleased).Return(nil, errors.New("connection reset"))

	err := svc.RecordMovement(ctx, app, actor, models.ActionReleaseEscrow, models.PaymentEntryRelease)
	assert.Error(t, err)
	repo.AssertNotCalled(t, "AppendLogEntry", mock.Anything, mock.Anything)
}

func TestLedgerService_RecordMovement_LogFailureSwallowed(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewLedgerService(repo)
	ctx := context.Background()

	app, actor, order := ledgerFixture()
	released := *order
	released.Status = models.EscrowOrderStatusReleased

	repo.On("GetLatestOrderByApplication", ctx, app.ID).Return(order, nil)
	repo.On("UpdateOrderStatus", ctx, order.ID, models.EscrowOrderStatusReleased).Return(&released, nil)
	repo.On("AppendLogEntry", ctx, mock.AnythingOfType("*models.PaymentLogEntry")).Return(errors.New("insert failed"))

	// Финансовое решение уже принято, сбой журнала его не отменяет.
	err := svc.RecordMovement(ctx, app, actor, models.ActionReleaseEscrow, models.PaymentEntryRelease)
	assert.NoError(t, err)
}

func TestLedgerService_History_ClampsLimit(t *testing.T) {
	repo := new(mockLedgerRepo)
	svc := NewLedgerService(repo)
	ctx := context.Background()

	appID := uuid.New()
	repo.On("ListLogByApplication", ctx, appID, 50, 0).Return([]models.PaymentLogEntry{}, nil)

	_, err := svc.History(ctx, appID, 0, -5)
	assert.NoError(t, err)

	_, err = svc.History(ctx, appID, 500, 0)
	assert.NoError(t, err)

	repo.AssertExpectations(t)
}
