package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest          ErrorCode = "BAD_REQUEST"
	ErrCodeConflict            ErrorCode = "CONFLICT"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation          ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError       ErrorCode = "DATABASE_ERROR"
	ErrCodeAlreadyAssigned     ErrorCode = "ALREADY_ASSIGNED"
	ErrCodeNotAssignee         ErrorCode = "NOT_ASSIGNEE"
	ErrCodeAlreadyCompleted    ErrorCode = "ALREADY_COMPLETED"
	ErrCodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
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

// Is сравнивает ошибки по коду, чтобы errors.Is работал с предопределёнными значениями.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && (t.Message == "" || e.Message == t.Message)
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeNotAssignee:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInsufficientBalance:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeAlreadyAssigned, ErrCodeAlreadyCompleted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки или пустую строку, если это не AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	return CodeOf(err) == ErrCodeForbidden
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

func IsAlreadyAssigned(err error) bool {
	return CodeOf(err) == ErrCodeAlreadyAssigned
}

func IsAlreadyCompleted(err error) bool {
	return CodeOf(err) == ErrCodeAlreadyCompleted
}

func IsInsufficientBalance(err error) bool {
	return CodeOf(err) == ErrCodeInsufficientBalance
}

var (
	ErrProblemNotFound    = New(ErrCodeNotFound, "проблема не найдена")
	ErrComplaintNotFound  = New(ErrCodeNotFound, "жалоба не найдена")
	ErrOrderNotFound      = New(ErrCodeNotFound, "заказ не найден")
	ErrItemNotFound       = New(ErrCodeNotFound, "товар не найден")
	ErrUserNotFound       = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized       = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden          = New(ErrCodeForbidden, "нет прав")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "неверное имя пользователя или пароль")

	ErrAlreadyAssigned     = New(ErrCodeAlreadyAssigned, "задание уже занято")
	ErrNotAssignee         = New(ErrCodeNotAssignee, "задание закреплено за другим пользователем")
	ErrAlreadyCompleted    = New(ErrCodeAlreadyCompleted, "уже выполнено")
	ErrInsufficientBalance = New(ErrCodeInsufficientBalance, "недостаточно баллов")
)
