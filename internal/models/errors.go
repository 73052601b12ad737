package models

import "errors"

// Виды доменных ошибок. Конкретные ошибки оборачивают один из них,
// поэтому проверка делается через errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrRateLimited      = errors.New("rate limited")
)

// Error - доменная ошибка с сообщением для пользователя
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Validation создает ошибку валидации входных данных
func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

// Unauthorized создает ошибку отсутствующей или неверной аутентификации
func Unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Message: msg}
}

// Forbidden создает ошибку отказа в доступе
func Forbidden(msg string) error {
	return &Error{Kind: ErrPermissionDenied, Message: msg}
}

// NotFound создает ошибку отсутствующей записи
func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Conflict создает ошибку недопустимого состояния
func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// RateLimited создает ошибку превышения лимита запросов
func RateLimited(msg string) error {
	return &Error{Kind: ErrRateLimited, Message: msg}
}

// ErrOwnProduct возвращается при попытке предложить обмен на собственный товар
var ErrOwnProduct = Forbidden("No puedes ofrecer por tu propio producto.")

// UserMessage возвращает пользовательское сообщение ошибки, если оно есть
func UserMessage(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}
