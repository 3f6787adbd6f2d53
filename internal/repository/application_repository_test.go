package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/teenlance/teenlance-backend/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func applicationRows(id uuid.UUID, status string, held bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "client_id", "freelancer_id", "title", "status",
		"bid_amount", "is_escrow_held", "revision_count", "created_at", "updated_at",
	}).AddRow(
		id, uuid.New(), uuid.New(), "Лендинг", status,
		1000.0, held, 0, now, now,
	)
}

func TestApplicationRepository_MarkPaid_Success(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`(?s)UPDATE applications.*is_escrow_held = FALSE.*WHERE id = \$1 AND is_escrow_held = TRUE.*RETURNING`).
		WithArgs(id, models.ApplicationStatusPaid, nil).
		WillReturnRows(applicationRows(id, models.ApplicationStatusPaid, false))

	app, err := repo.MarkPaid(context.Background(), id, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPaid, app.Status)
	assert.False(t, app.IsEscrowHeld)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_MarkPaid_EscrowNotHeld(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)
	id := uuid.New()

	// CAS по is_escrow_held: если условие не прошло, строк нет.
	mock.ExpectQuery(`(?s)UPDATE applications.*is_escrow_held = TRUE`).
		WithArgs(id, models.ApplicationStatusPaid, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.MarkPaid(context.Background(), id, nil)
	assert.ErrorIs(t, err, ErrEscrowNotHeld)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_MarkPaid_SecondReleaseLoses(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)
	id := uuid.New()

	// Два освобождения подряд: первое снимает удержание, второе
	// не находит строку с is_escrow_held = TRUE и получает отказ.
	mock.ExpectQuery(`(?s)UPDATE applications.*WHERE id = \$1 AND is_escrow_held = TRUE`).
		WithArgs(id, models.ApplicationStatusPaid, nil).
		WillReturnRows(applicationRows(id, models.ApplicationStatusPaid, false))
	mock.ExpectQuery(`(?s)UPDATE applications.*WHERE id = \$1 AND is_escrow_held = TRUE`).
		WithArgs(id, models.ApplicationStatusPaid, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	first, err := repo.MarkPaid(context.Background(), id, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPaid, first.Status)

	_, err = repo.MarkPaid(context.Background(), id, nil)
	assert.ErrorIs(t, err, ErrEscrowNotHeld)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_CancelWithRefund_EscrowNotHeld(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`(?s)UPDATE applications.*is_escrow_held = TRUE`).
		WithArgs(id, models.ApplicationStatusCancelled).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.CancelWithRefund(context.Background(), id)
	assert.ErrorIs(t, err, ErrEscrowNotHeld)
}

func TestApplicationRepository_Reject_ReportsHeldEscrow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT \* FROM applications WHERE id = \$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(applicationRows(id, models.ApplicationStatusSubmitted, true))
	mock.ExpectQuery(`(?s)UPDATE applications.*rejection_reason`).
		WithArgs(id, models.ApplicationStatusRejected, "не подходит").
		WillReturnRows(applicationRows(id, models.ApplicationStatusRejected, false))
	mock.ExpectCommit()

	app, wasHeld, err := repo.Reject(context.Background(), id, "не подходит")
	assert.NoError(t, err)
	assert.True(t, wasHeld)
	assert.Equal(t, models.ApplicationStatusRejected, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_Reject_AlreadyPaid(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT \* FROM applications WHERE id = \$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(applicationRows(id, models.ApplicationStatusPaid, false))
	mock.ExpectRollback()

	_, _, err := repo.Reject(context.Background(), id, "передумал")
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_Reject_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT \* FROM applications WHERE id = \$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, _, err := repo.Reject(context.Background(), id, "причина")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestApplicationRepository_SetReview_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)
	id := uuid.New()

	// rating IS NULL в условии: повторный отзыв не находит строку.
	mock.ExpectQuery(`(?s)UPDATE applications.*rating IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.SetReview(context.Background(), id, 5, []string{"быстро"})
	assert.ErrorIs(t, err, ErrReviewAlreadySet)
}

func TestApplicationRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM applications WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}
