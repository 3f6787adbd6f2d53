package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/teenlance/teenlance-backend/internal/models"
	"github.com/teenlance/teenlance-backend/internal/pkg/apperror"
	"github.com/teenlance/teenlance-backend/internal/repository"
)

type mockApplicationStore struct {
	mock.Mock
}

func (m *mockApplicationStore) Create(ctx context.Context, app *models.Application) (*models.EscrowOrder, error) {
	args := m.Called(ctx, app)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EscrowOrder), args.Error(1)
}

func (m *mockApplicationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *mockApplicationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Application, []models.Application, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Application), args.Get(1).([]models.Application), args.Error(2)
}

func (m *mockApplicationStore) Accept(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *mockApplicationStore) SubmitWork(ctx context.Context, id uuid.UUID, link, message *string, files []string) (*models.Application, error) {
	args := m.Called(ctx, id, link, message, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *mockApplicationStore) ApproveWork(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *mockApplicationStore) MarkPaid(ctx context.Context, id uuid.UUID, adminNote *string) (*models.Application, error) {
	args := m.Called(ctx, id, adminNote)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *mockApplicationStore) CancelWithRefund(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *mockApplicationStore) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Application, bool, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Application), args.Bool(1), args.Error(2)
}

func (m *mockApplicationStore) RequestRevision(ctx context.Context, id uuid.UUID, message string) (*models.Application, error) {
	args := m.Called(ctx, id, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *mockApplicationStore) SetReview(ctx context.Context, id uuid.UUID, rating int, tags []string) (*models.Application, error) {
	args := m.Called(ctx, id, rating, tags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

type mockProfileResolver struct {
	mock.Mock
}

func (m *mockProfileResolver) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockProfileResolver) AddEnergyPoints(ctx context.Context, userID uuid.UUID, points int) error {
	args := m.Called(ctx, userID, points)
	return args.Error(0)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) RecordMovement(ctx context.Context, app *models.Application, actor *models.User, action, entryType string) error {
	args := m.Called(ctx, app, actor, action, entryType)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(userID uuid.UUID, event string, data map[string]any) {
	m.Called(userID, event, data)
}

func newTestService(apps *mockApplicationStore, users *mockProfileResolver, ledger *mockLedger, notifier *mockNotifier) *ApplicationService {
	return NewApplicationService(apps, users, NewGate(), ledger, notifier, 5)
}

func activeUser(role string) *models.User {
	return &models.User{
		ID:        uuid.New(),
		Role:      role,
		Status:    models.UserStatusActive,
		KycStatus: models.KycStatusApproved,
	}
}

func testApplication(clientID, freelancerID uuid.UUID, status string, held bool) *models.Application {
	return &models.Application{
		ID:           uuid.New(),
		ClientID:     clientID,
		FreelancerID: freelancerID,
		Title:        "Лендинг для школьного проекта",
		Status:       status,
		BidAmount:    1000,
		IsEscrowHeld: held,
	}
}

func TestApplicationService_Perform_UnknownAction(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	client := activeUser(models.RoleClient)
	app := testApplication(client.ID, uuid.New(), models.ApplicationStatusPending, true)

	users.On("GetByID", ctx, client.ID).Return(client, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)

	_, err := svc.Perform(ctx, client.ID, app.ID, "DANCE", ActionInput{})
	assert.Error(t, err)

	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.ErrCodeInvalidAction, appErr.Code)

	// Ни одного вызова мутации: неизвестное действие ничего не меняет.
	apps.AssertExpectations(t)
	ledger.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestApplicationService_ReleaseEscrow_Success(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	client := activeUser(models.RoleClient)
	freelancerID := uuid.New()
	// Единственное предусловие выплаты — удержание средств: статус может
	// быть любым, в том числе accepted до сдачи работы.
	app := testApplication(client.ID, freelancerID, models.ApplicationStatusAccepted, true)

	paid := *app
	paid.Status = models.ApplicationStatusPaid
	paid.IsEscrowHeld = false

	users.On("GetByID", ctx, client.ID).Return(client, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	apps.On("MarkPaid", ctx, app.ID, (*string)(nil)).Return(&paid, nil)
	ledger.On("RecordMovement", ctx, &paid, client, models.ActionReleaseEscrow, models.PaymentEntryRelease).Return(nil)

	// В уведомлении сумма за вычетом комиссии 5%: 1000 -> 950.
	notifier.On("Notify", freelancerID, "escrow_released", mock.MatchedBy(func(data map[string]any) bool {
		return data["amount"] == float64(950) && data["gross_amount"] == float64(1000)
	})).Return()

	result, err := svc.Perform(ctx, client.ID, app.ID, models.ActionReleaseEscrow, ActionInput{})
	assert.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPaid, result.Status)
	assert.False(t, result.IsEscrowHeld)

	apps.AssertExpectations(t)
	ledger.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestApplicationService_ReleaseEscrow_NotHeld(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	client := activeUser(models.RoleClient)
	app := testApplication(client.ID, uuid.New(), models.ApplicationStatusCompleted, false)

	users.On("GetByID", ctx, client.ID).Return(client, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	apps.On("MarkPaid", ctx, app.ID, (*string)(nil)).Return(nil, repository.ErrEscrowNotHeld)

	_, err := svc.Perform(ctx, client.ID, app.ID, models.ActionReleaseEscrow, ActionInput{})
	assert.Error(t, err)
	assert.True(t, apperror.IsPrecondition(err))

	ledger.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestApplicationService_ParentMode_BlocksRelease(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	client := activeUser(models.RoleClient)
	client.ParentMode = true

	users.On("GetByID", ctx, client.ID).Return(client, nil)

	_, err := svc.Perform(ctx, client.ID, uuid.New(), models.ActionReleaseEscrow, ActionInput{})
	assert.Error(t, err)
	assert.True(t, apperror.IsSecurityBlock(err))

	appErr, _ := apperror.As(err)
	assert.Equal(t, apperror.ErrCodeParentModeBlock, appErr.Code)

	// Гейт срабатывает до обращения к отклику.
	apps.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestApplicationService_ParentMode_AllowsNonRestricted(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	freelancer := activeUser(models.RoleFreelancer)
	freelancer.ParentMode = true
	app := testApplication(uuid.New(), freelancer.ID, models.ApplicationStatusAccepted, true)

	submitted := *app
	submitted.Status = models.ApplicationStatusSubmitted

	link := "https://example.com/result"
	users.On("GetByID", ctx, freelancer.ID).Return(freelancer, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	apps.On("SubmitWork", ctx, app.ID, &link, (*string)(nil), []string(nil)).Return(&submitted, nil)
	notifier.On("Notify", app.ClientID, "work_submitted", mock.Anything).Return()

	_, err := svc.Perform(ctx, freelancer.ID, app.ID, models.ActionSubmitWork, ActionInput{WorkLink: &link})
	assert.NoError(t, err)
}

func TestApplicationService_KycRequired_BeforeOwnership(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	freelancer := activeUser(models.RoleFreelancer)
	freelancer.KycStatus = models.KycStatusUnverified

	users.On("GetByID", ctx, freelancer.ID).Return(freelancer, nil)

	_, err := svc.Perform(ctx, freelancer.ID, uuid.New(), models.ActionAcceptApplication, ActionInput{})
	assert.Error(t, err)
	assert.True(t, apperror.IsKycBlock(err))

	// KYC проверяется раньше принадлежности: отклик даже не загружается.
	apps.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestApplicationService_Suspended_WinsOverOtherGates(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	client := activeUser(models.RoleClient)
	client.Status = models.UserStatusSuspended
	client.ParentMode = true
	client.KycStatus = models.KycStatusUnverified

	users.On("GetByID", ctx, client.ID).Return(client, nil)

	_, err := svc.Perform(ctx, client.ID, uuid.New(), models.ActionReleaseEscrow, ActionInput{})
	assert.Error(t, err)

	appErr, _ := apperror.As(err)
	assert.Equal(t, apperror.ErrCodeAccountSuspended, appErr.Code)
	assert.True(t, appErr.SecurityBlock)
}

func TestApplicationService_Stranger_Forbidden(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	stranger := activeUser(models.RoleClient)
	app := testApplication(uuid.New(), uuid.New(), models.ApplicationStatusCompleted, true)

	users.On("GetByID", ctx, stranger.ID).Return(stranger, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)

	_, err := svc.Perform(ctx, stranger.ID, app.ID, models.ActionReleaseEscrow, ActionInput{})
	assert.Error(t, err)

	appErr, _ := apperror.As(err)
	assert.Equal(t, apperror.ErrCodeForbidden, appErr.Code)

	apps.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplicationService_WrongSide_Forbidden(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	// Фрилансер пытается сам себе одобрить работу.
	freelancer := activeUser(models.RoleFreelancer)
	app := testApplication(uuid.New(), freelancer.ID, models.ApplicationStatusSubmitted, true)

	users.On("GetByID", ctx, freelancer.ID).Return(freelancer, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)

	_, err := svc.Perform(ctx, freelancer.ID, app.ID, models.ActionApproveWork, ActionInput{})
	assert.Error(t, err)

	appErr, _ := apperror.As(err)
	assert.Equal(t, apperror.ErrCodeForbidden, appErr.Code)
}

func TestApplicationService_AdminForceRelease_SkipsGates(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	admin := activeUser(models.RoleAdmin)
	admin.ParentMode = true
	admin.KycStatus = models.KycStatusUnverified
	app := testApplication(uuid.New(), uuid.New(), models.ApplicationStatusSubmitted, true)

	paid := *app
	paid.Status = models.ApplicationStatusPaid
	paid.IsEscrowHeld = false

	users.On("GetByID", ctx, admin.ID).Return(admin, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	apps.On("MarkPaid", ctx, app.ID, mock.AnythingOfType("*string")).Return(&paid, nil)
	ledger.On("RecordMovement", ctx, &paid, admin, models.ActionAdminForceRelease, models.PaymentEntryRelease).Return(nil)
	notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything).Return()

	_, err := svc.Perform(ctx, admin.ID, app.ID, models.ActionAdminForceRelease, ActionInput{})
	assert.NoError(t, err)

	apps.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestApplicationService_AdminForceRelease_NonAdminForbidden(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	client := activeUser(models.RoleClient)
	app := testApplication(client.ID, uuid.New(), models.ApplicationStatusSubmitted, true)

	users.On("GetByID", ctx, client.ID).Return(client, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)

	_, err := svc.Perform(ctx, client.ID, app.ID, models.ActionAdminForceRelease, ActionInput{})
	assert.Error(t, err)

	appErr, _ := apperror.As(err)
	assert.Equal(t, apperror.ErrCodeForbidden, appErr.Code)
}

func TestApplicationService_AdminForceRefund_NotHeld(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	admin := activeUser(models.RoleAdmin)
	app := testApplication(uuid.New(), uuid.New(), models.ApplicationStatusPaid, false)

	users.On("GetByID", ctx, admin.ID).Return(admin, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	apps.On("CancelWithRefund", ctx, app.ID).Return(nil, repository.ErrEscrowNotHeld)

	_, err := svc.Perform(ctx, admin.ID, app.ID, models.ActionAdminForceRefund, ActionInput{})
	assert.Error(t, err)
	assert.True(t, apperror.IsPrecondition(err))

	ledger.AssertExpectations(t)
}

func TestApplicationService_Reject_RefundsOnlyWhenHeld(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	client := activeUser(models.RoleClient)
	freelancerID := uuid.New()
	app := testApplication(client.ID, freelancerID, models.ApplicationStatusSubmitted, false)

	rejected := *app
	rejected.Status = models.ApplicationStatusRejected

	users.On("GetByID", ctx, client.ID).Return(client, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	apps.On("Reject", ctx, app.ID, "не то").Return(&rejected, false, nil)
	notifier.On("Notify", freelancerID, "application_rejected", mock.Anything).Return()

	_, err := svc.Perform(ctx, client.ID, app.ID, models.ActionRejectApplication, ActionInput{Reason: "не то"})
	assert.NoError(t, err)

	// Средства не удерживались, возврат не пишется.
	ledger.AssertNotCalled(t, "RecordMovement", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApplicationService_Reject_WithRefund(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	client := activeUser(models.RoleClient)
	app := testApplication(client.ID, uuid.New(), models.ApplicationStatusSubmitted, true)

	rejected := *app
	rejected.Status = models.ApplicationStatusRejected
	rejected.IsEscrowHeld = false

	users.On("GetByID", ctx, client.ID).Return(client, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	apps.On("Reject", ctx, app.ID, "срок сорван").Return(&rejected, true, nil)
	ledger.On("RecordMovement", ctx, &rejected, client, models.ActionRejectApplication, models.PaymentEntryRefund).Return(nil)
	notifier.On("Notify", app.FreelancerID, "application_rejected", mock.Anything).Return()

	_, err := svc.Perform(ctx, client.ID, app.ID, models.ActionRejectApplication, ActionInput{Reason: "срок сорван"})
	assert.NoError(t, err)

	ledger.AssertExpectations(t)
}

func TestApplicationService_SubmitReview_FiveStarsAwardsPoints(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	client := activeUser(models.RoleClient)
	freelancerID := uuid.New()
	app := testApplication(client.ID, freelancerID, models.ApplicationStatusPaid, false)

	rating := 5
	reviewed := *app
	reviewed.Rating = &rating

	users.On("GetByID", ctx, client.ID).Return(client, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	apps.On("SetReview", ctx, app.ID, 5, []string{"быстро"}).Return(&reviewed, nil)
	users.On("AddEnergyPoints", ctx, freelancerID, 5).Return(nil)
	notifier.On("Notify", freelancerID, "review_received", mock.Anything).Return()

	_, err := svc.Perform(ctx, client.ID, app.ID, models.ActionSubmitReview, ActionInput{Rating: 5, Tags: []string{"быстро"}})
	assert.NoError(t, err)

	users.AssertExpectations(t)
}

func TestApplicationService_SubmitReview_Duplicate(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	client := activeUser(models.RoleClient)
	app := testApplication(client.ID, uuid.New(), models.ApplicationStatusPaid, false)

	users.On("GetByID", ctx, client.ID).Return(client, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	apps.On("SetReview", ctx, app.ID, 4, []string(nil)).Return(nil, repository.ErrReviewAlreadySet)

	_, err := svc.Perform(ctx, client.ID, app.ID, models.ActionSubmitReview, ActionInput{Rating: 4})
	assert.Error(t, err)

	appErr, _ := apperror.As(err)
	assert.Equal(t, apperror.ErrCodeConflict, appErr.Code)

	users.AssertNotCalled(t, "AddEnergyPoints", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplicationService_AcceptApplication_AnyParticipant(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	// Принять отклик может любая сторона соглашения, уведомляется фрилансер.
	client := activeUser(models.RoleClient)
	freelancerID := uuid.New()
	app := testApplication(client.ID, freelancerID, models.ApplicationStatusPending, true)

	accepted := *app
	accepted.Status = models.ApplicationStatusAccepted

	users.On("GetByID", ctx, client.ID).Return(client, nil)
	apps.On("GetByID", ctx, app.ID).Return(app, nil)
	apps.On("Accept", ctx, app.ID).Return(&accepted, nil)
	notifier.On("Notify", freelancerID, "application_accepted", mock.Anything).Return()

	result, err := svc.Perform(ctx, client.ID, app.ID, models.ActionAcceptApplication, ActionInput{})
	assert.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, result.Status)

	apps.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestApplicationService_Create_FixesBidAmount(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	client := activeUser(models.RoleClient)
	freelancer := activeUser(models.RoleFreelancer)

	users.On("GetByID", ctx, client.ID).Return(client, nil)
	users.On("GetByID", ctx, freelancer.ID).Return(freelancer, nil)
	apps.On("Create", ctx, mock.MatchedBy(func(app *models.Application) bool {
		return app.BidAmount == 1500 && app.IsEscrowHeld && app.Status == models.ApplicationStatusPending
	})).Return(&models.EscrowOrder{}, nil)
	notifier.On("Notify", freelancer.ID, "application_received", mock.Anything).Return()

	app, err := svc.Create(ctx, client.ID, CreateInput{
		FreelancerID: freelancer.ID,
		Title:        "Монтаж видео",
		BidAmount:    1500,
	})
	assert.NoError(t, err)
	assert.Equal(t, float64(1500), app.BidAmount)
}

func TestApplicationService_Create_RejectsSelf(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	client := activeUser(models.RoleClient)
	users.On("GetByID", ctx, client.ID).Return(client, nil)

	_, err := svc.Create(ctx, client.ID, CreateInput{
		FreelancerID: client.ID,
		Title:        "Сам себе заказ",
		BidAmount:    100,
	})
	assert.Error(t, err)
}

func TestApplicationService_ProfileNotFound(t *testing.T) {
	apps := new(mockApplicationStore)
	users := new(mockProfileResolver)
	ledger := new(mockLedger)
	notifier := new(mockNotifier)
	svc := newTestService(apps, users, ledger, notifier)
	ctx := context.Background()

	actorID := uuid.New()
	users.On("GetByID", ctx, actorID).Return(nil, repository.ErrUserNotFound)

	_, err := svc.Perform(ctx, actorID, uuid.New(), models.ActionSubmitWork, ActionInput{})
	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
