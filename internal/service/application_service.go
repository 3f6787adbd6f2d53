package service

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/teenlance/teenlance-backend/internal/logger"
	"github.com/teenlance/teenlance-backend/internal/metrics"
	"github.com/teenlance/teenlance-backend/internal/models"
	"github.com/teenlance/teenlance-backend/internal/pkg/apperror"
	"github.com/teenlance/teenlance-backend/internal/repository"
	"github.com/teenlance/teenlance-backend/internal/validation"
)

// revisionPreviewLimit — максимум символов комментария доработки в уведомлении.
const revisionPreviewLimit = 200

// ApplicationStore описывает зависимости ApplicationService от слоя хранилища.
type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) (*models.EscrowOrder, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Application, []models.Application, error)
	Accept(ctx context.Context, id uuid.UUID) (*models.Application, error)
	SubmitWork(ctx context.Context, id uuid.UUID, link, message *string, files []string) (*models.Application, error)
	ApproveWork(ctx context.Context, id uuid.UUID) (*models.Application, error)
	MarkPaid(ctx context.Context, id uuid.UUID, adminNote *string) (*models.Application, error)
	CancelWithRefund(ctx context.Context, id uuid.UUID) (*models.Application, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Application, bool, error)
	RequestRevision(ctx context.Context, id uuid.UUID, message string) (*models.Application, error)
	SetReview(ctx context.Context, id uuid.UUID, rating int, tags []string) (*models.Application, error)
}

// ProfileResolver загружает пользователя со всеми compliance-полями одним запросом.
type ProfileResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	AddEnergyPoints(ctx context.Context, userID uuid.UUID, points int) error
}

// MovementRecorder фиксирует движение средств в платёжном журнале.
type MovementRecorder interface {
	RecordMovement(ctx context.Context, app *models.Application, actor *models.User, action, entryType string) error
}

// TransitionNotifier доставляет уведомления о переходах. Fire-and-forget.
type TransitionNotifier interface {
	Notify(userID uuid.UUID, event string, data map[string]any)
}

// ActionInput содержит полезную нагрузку действия. Сумма намеренно отсутствует:
// она зафиксирована при создании отклика.
type ActionInput struct {
	WorkLink    *string
	WorkMessage *string
	WorkFiles   []string
	Message     string
	Reason      string
	Rating      int
	Tags        []string
}

// ApplicationService реализует переходы жизненного цикла отклика.
// Каждое действие проходит одинаковую последовательность: резолв профиля,
// compliance-гейт, проверка принадлежности, предусловие, переход.
type ApplicationService struct {
	apps       ApplicationStore
	users      ProfileResolver
	gate       *Gate
	ledger     MovementRecorder
	notifier   TransitionNotifier
	feePercent float64
}

func NewApplicationService(apps ApplicationStore, users ProfileResolver, gate *Gate, ledger MovementRecorder, notifier TransitionNotifier, feePercent float64) *ApplicationService {
	return &ApplicationService{
		apps:       apps,
		users:      users,
		gate:       gate,
		ledger:     ledger,
		notifier:   notifier,
		feePercent: feePercent,
	}
}

// CreateInput содержит данные нового отклика.
type CreateInput struct {
	FreelancerID uuid.UUID
	Title        string
	BidAmount    float64
}

// Create создаёт отклик и удерживает средства в эскроу.
func (s *ApplicationService) Create(ctx context.Context, clientID uuid.UUID, in CreateInput) (*models.Application, error) {
	client, err := s.resolveActor(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client.IsSuspended() && !client.IsAdmin() {
		return nil, apperror.ErrAccountSuspended
	}

	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.BidAmount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма должна быть больше нуля")
	}
	if in.FreelancerID == clientID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя создать отклик на самого себя")
	}

	freelancer, err := s.users.GetByID(ctx, in.FreelancerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrProfileNotFound
		}
		return nil, err
	}
	if freelancer.Role != models.RoleFreelancer {
		return nil, apperror.New(apperror.ErrCodeValidation, "получатель отклика не является фрилансером")
	}

	app := &models.Application{
		ClientID:     clientID,
		FreelancerID: in.FreelancerID,
		Title:        in.Title,
		Status:       models.ApplicationStatusPending,
		BidAmount:    in.BidAmount,
		IsEscrowHeld: true,
	}

	if _, err := s.apps.Create(ctx, app); err != nil {
		return nil, err
	}

	s.notifier.Notify(app.FreelancerID, "application_received", map[string]any{
		"application_id": app.ID,
		"title":          app.Title,
		"bid_amount":     app.BidAmount,
	})

	return app, nil
}

// Get возвращает отклик участнику или администратору.
func (s *ApplicationService) Get(ctx context.Context, actorID, applicationID uuid.UUID) (*models.Application, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && !app.IsParticipant(actorID) {
		return nil, apperror.ErrForbidden
	}

	return app, nil
}

// ListMy возвращает отклики пользователя по обеим ролям.
func (s *ApplicationService) ListMy(ctx context.Context, userID uuid.UUID) ([]models.Application, []models.Application, error) {
	return s.apps.ListByUser(ctx, userID)
}

// Perform выполняет действие над откликом. Единая точка входа для всех переходов.
func (s *ApplicationService) Perform(ctx context.Context, actorID, applicationID uuid.UUID, action string, in ActionInput) (*models.Application, error) {
	app, err := s.perform(ctx, actorID, applicationID, action, in)
	metrics.TransitionsTotal.WithLabelValues(action, outcomeLabel(err)).Inc()
	return app, err
}

func (s *ApplicationService) perform(ctx context.Context, actorID, applicationID uuid.UUID, action string, in ActionInput) (*models.Application, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	// Гейт идёт до проверки принадлежности: заблокированный пользователь
	// не должен узнать по ответу, существует ли отклик.
	if err := s.gate.Check(actor, action); err != nil {
		return nil, err
	}

	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && !app.IsParticipant(actorID) {
		return nil, apperror.ErrForbidden
	}

	switch action {
	case models.ActionAcceptApplication:
		return s.acceptApplication(ctx, app)
	case models.ActionSubmitWork:
		return s.submitWork(ctx, actor, app, in)
	case models.ActionApproveWork:
		return s.approveWork(ctx, actor, app)
	case models.ActionReleaseEscrow:
		return s.releaseEscrow(ctx, actor, app)
	case models.ActionAdminForceRelease:
		return s.adminForceRelease(ctx, actor, app, in)
	case models.ActionAdminForceRefund:
		return s.adminForceRefund(ctx, actor, app, in)
	case models.ActionRejectApplication:
		return s.rejectApplication(ctx, actor, app, in)
	case models.ActionRequestRevision:
		return s.requestRevision(ctx, actor, app, in)
	case models.ActionSubmitReview:
		return s.submitReview(ctx, actor, app, in)
	default:
		return nil, apperror.ErrInvalidAction
	}
}

// acceptApplication доступен любой стороне соглашения: принять может и
// заказчик, и сам исполнитель.
func (s *ApplicationService) acceptApplication(ctx context.Context, app *models.Application) (*models.Application, error) {
	updated, err := s.apps.Accept(ctx, app.ID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	s.notifier.Notify(app.FreelancerID, "application_accepted", map[string]any{
		"application_id": app.ID,
		"title":          app.Title,
	})

	return updated, nil
}

func (s *ApplicationService) submitWork(ctx context.Context, actor *models.User, app *models.Application, in ActionInput) (*models.Application, error) {
	if err := s.requireSide(actor, app, app.FreelancerID); err != nil {
		return nil, err
	}
	if in.WorkLink == nil && in.WorkMessage == nil && len(in.WorkFiles) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "нужно приложить ссылку, сообщение или файлы")
	}

	updated, err := s.apps.SubmitWork(ctx, app.ID, in.WorkLink, in.WorkMessage, in.WorkFiles)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	s.notifier.Notify(app.ClientID, "work_submitted", map[string]any{
		"application_id": app.ID,
		"title":          app.Title,
	})

	return updated, nil
}

func (s *ApplicationService) approveWork(ctx context.Context, actor *models.User, app *models.Application) (*models.Application, error) {
	if err := s.requireSide(actor, app, app.ClientID); err != nil {
		return nil, err
	}

	updated, err := s.apps.ApproveWork(ctx, app.ID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	s.notifier.Notify(app.FreelancerID, "work_approved", map[string]any{
		"application_id": app.ID,
		"title":          app.Title,
	})

	return updated, nil
}

// releaseEscrow освобождает эскроу и переводит отклик в paid. Единственное
// предусловие — удержание средств; его несёт compare-and-swap по
// is_escrow_held в хранилище, так что из двух конкурентных освобождений
// пройдёт ровно одно.
func (s *ApplicationService) releaseEscrow(ctx context.Context, actor *models.User, app *models.Application) (*models.Application, error) {
	if err := s.requireSide(actor, app, app.ClientID); err != nil {
		return nil, err
	}

	updated, err := s.apps.MarkPaid(ctx, app.ID, nil)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	if err := s.ledger.RecordMovement(ctx, updated, actor, models.ActionReleaseEscrow, models.PaymentEntryRelease); err != nil {
		return nil, err
	}

	s.notifyPayout(updated)
	return updated, nil
}

func (s *ApplicationService) adminForceRelease(ctx context.Context, actor *models.User, app *models.Application, in ActionInput) (*models.Application, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	note := "принудительная выплата администратором"
	if in.Reason != "" {
		note = in.Reason
	}

	updated, err := s.apps.MarkPaid(ctx, app.ID, &note)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	if err := s.ledger.RecordMovement(ctx, updated, actor, models.ActionAdminForceRelease, models.PaymentEntryRelease); err != nil {
		return nil, err
	}

	s.notifyPayout(updated)
	s.notifier.Notify(updated.ClientID, "escrow_force_released", map[string]any{
		"application_id": updated.ID,
		"reason":         note,
	})

	return updated, nil
}

func (s *ApplicationService) adminForceRefund(ctx context.Context, actor *models.User, app *models.Application, in ActionInput) (*models.Application, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	updated, err := s.apps.CancelWithRefund(ctx, app.ID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	if err := s.ledger.RecordMovement(ctx, updated, actor, models.ActionAdminForceRefund, models.PaymentEntryRefund); err != nil {
		return nil, err
	}

	data := map[string]any{
		"application_id": updated.ID,
		"amount":         updated.BidAmount,
	}
	if in.Reason != "" {
		data["reason"] = in.Reason
	}
	s.notifier.Notify(updated.ClientID, "escrow_refunded", data)
	s.notifier.Notify(updated.FreelancerID, "escrow_refunded", data)

	return updated, nil
}

func (s *ApplicationService) rejectApplication(ctx context.Context, actor *models.User, app *models.Application, in ActionInput) (*models.Application, error) {
	if err := s.requireSide(actor, app, app.ClientID); err != nil {
		return nil, err
	}
	if in.Reason == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "нужно указать причину отклонения")
	}

	updated, wasHeld, err := s.apps.Reject(ctx, app.ID, in.Reason)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	// Возврат нужен, только если средства ещё удерживались на момент отклонения.
	if wasHeld {
		if err := s.ledger.RecordMovement(ctx, updated, actor, models.ActionRejectApplication, models.PaymentEntryRefund); err != nil {
			return nil, err
		}
	}

	s.notifier.Notify(updated.FreelancerID, "application_rejected", map[string]any{
		"application_id": updated.ID,
		"reason":         in.Reason,
	})

	return updated, nil
}

func (s *ApplicationService) requestRevision(ctx context.Context, actor *models.User, app *models.Application, in ActionInput) (*models.Application, error) {
	if err := s.requireSide(actor, app, app.ClientID); err != nil {
		return nil, err
	}
	if in.Message == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "нужно описать, что доработать")
	}

	updated, err := s.apps.RequestRevision(ctx, app.ID, in.Message)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	s.notifier.Notify(updated.FreelancerID, "revision_requested", map[string]any{
		"application_id": updated.ID,
		"message":        validation.TruncateMessage(in.Message, revisionPreviewLimit),
		"revision_count": updated.RevisionCount,
	})

	return updated, nil
}

func (s *ApplicationService) submitReview(ctx context.Context, actor *models.User, app *models.Application, in ActionInput) (*models.Application, error) {
	if err := s.requireSide(actor, app, app.ClientID); err != nil {
		return nil, err
	}
	if err := validation.ValidateRating(in.Rating); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	updated, err := s.apps.SetReview(ctx, app.ID, in.Rating, in.Tags)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	// Максимальная оценка начисляет фрилансеру баллы лояльности. Инкремент
	// атомарный на стороне базы, сбой не отменяет уже сохранённый отзыв.
	if in.Rating == 5 {
		if err := s.users.AddEnergyPoints(ctx, updated.FreelancerID, 5); err != nil {
			logger.Log.WithFields(map[string]interface{}{
				"application_id": updated.ID,
				"freelancer_id":  updated.FreelancerID,
				"error":          err.Error(),
			}).Warn("application service: не удалось начислить баллы")
		}
	}

	s.notifier.Notify(updated.FreelancerID, "review_received", map[string]any{
		"application_id": updated.ID,
		"rating":         in.Rating,
		"tags":           in.Tags,
	})

	return updated, nil
}

// notifyPayout шлёт фрилансеру уведомление о выплате. В уведомлении сумма
// за вычетом комиссии платформы; в журнале при этом всегда полная сумма.
func (s *ApplicationService) notifyPayout(app *models.Application) {
	net := math.Round(app.BidAmount*(100-s.feePercent)) / 100
	s.notifier.Notify(app.FreelancerID, "escrow_released", map[string]any{
		"application_id": app.ID,
		"amount":         net,
		"gross_amount":   app.BidAmount,
		"fee_percent":    s.feePercent,
	})
}

func (s *ApplicationService) resolveActor(ctx context.Context, actorID uuid.UUID) (*models.User, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrProfileNotFound
		}
		return nil, err
	}
	return actor, nil
}

func (s *ApplicationService) getApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, apperror.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// requireSide проверяет, что действие выполняет нужная сторона соглашения.
// Администратор может действовать за любую сторону.
func (s *ApplicationService) requireSide(actor *models.User, app *models.Application, allowed uuid.UUID) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.ID != allowed {
		return apperror.ErrForbidden
	}
	return nil
}

func (s *ApplicationService) mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrApplicationNotFound):
		return apperror.ErrApplicationNotFound
	case errors.Is(err, repository.ErrEscrowNotHeld):
		return apperror.New(apperror.ErrCodePrecondition, "средства по отклику не удерживаются")
	case errors.Is(err, repository.ErrAlreadyPaid):
		return apperror.New(apperror.ErrCodePrecondition, "отклик уже оплачен")
	case errors.Is(err, repository.ErrReviewAlreadySet):
		return apperror.New(apperror.ErrCodeConflict, "отзыв уже оставлен")
	default:
		return err
	}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case apperror.IsSecurityBlock(err) || apperror.IsKycBlock(err):
		return "blocked"
	case apperror.IsPrecondition(err):
		return "precondition_failed"
	default:
		return "error"
	}
}
