package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeConflict         ErrorCode = "CONFLICT"
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidAction    ErrorCode = "INVALID_ACTION"
	ErrCodePrecondition     ErrorCode = "PRECONDITION_FAILED"
	ErrCodeAccountSuspended ErrorCode = "ACCOUNT_SUSPENDED"
	ErrCodeParentModeBlock  ErrorCode = "PARENT_MODE_BLOCK"
	ErrCodeKycRequired      ErrorCode = "KYC_REQUIRED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError    ErrorCode = "DATABASE_ERROR"
)

// AppError — структурированная ошибка с кодом и HTTP статусом.
// SecurityBlock и KycBlock дают фронтенду дискриминант, чтобы показать
// специальное сообщение вместо общего отказа в доступе.
type AppError struct {
	Code          ErrorCode
	Message       string
	HTTPStatus    int
	SecurityBlock bool
	KycBlock      bool
	Cause         error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:          code,
		Message:       message,
		HTTPStatus:    codeToHTTPStatus(code),
		SecurityBlock: code == ErrCodeAccountSuspended || code == ErrCodeParentModeBlock,
		KycBlock:      code == ErrCodeKycRequired,
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeAccountSuspended, ErrCodeParentModeBlock, ErrCodeKycRequired:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInvalidAction:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodePrecondition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// As извлекает *AppError из цепочки ошибок.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsPrecondition(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodePrecondition
}

func IsSecurityBlock(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.SecurityBlock
}

func IsKycBlock(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.KycBlock
}

var (
	ErrProfileNotFound     = New(ErrCodeNotFound, "профиль пользователя не найден")
	ErrApplicationNotFound = New(ErrCodeNotFound, "отклик не найден")
	ErrUnauthorized        = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden           = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials  = New(ErrCodeUnauthorized, "неверные учетные данные")
	ErrAccountSuspended    = New(ErrCodeAccountSuspended, "аккаунт заблокирован")
	ErrParentModeBlock     = New(ErrCodeParentModeBlock, "действие недоступно в родительском режиме")
	ErrKycRequired         = New(ErrCodeKycRequired, "для финансовых операций требуется подтверждение личности")
	ErrInvalidAction       = New(ErrCodeInvalidAction, "неизвестное действие")
)
