package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a coded failure that knows its HTTP status. Only Code, Message and Status
// are serialised; the wrapped cause stays server side.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Kiosk-facing defaults. Services usually Clone these with a more specific Korean message.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "요청한 민원을 찾을 수 없습니다.")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "관리자 권한이 필요합니다.")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "로그인이 필요합니다.")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "입력값을 확인해주세요.")
	ErrPersistence  = New("PERSISTENCE_ERROR", http.StatusServiceUnavailable, "민원 저장소에 연결할 수 없습니다.")
	ErrTooManyTries = New("TOO_MANY_ATTEMPTS", http.StatusTooManyRequests, "시도 횟수를 초과했습니다.")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "일시적인 오류가 발생했습니다.")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// New creates an Error without a cause.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap creates an Error carrying err as its cause.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Persistence wraps a record store failure. An empty message keeps the default.
func Persistence(err error, message string) *Error {
	if message == "" {
		message = ErrPersistence.Message
	}
	return Wrap(err, ErrPersistence.Code, ErrPersistence.Status, message)
}

// Clone copies err, replacing the message when one is given.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// FromError finds the *Error in err's chain, or reports err as an internal failure.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones match their template.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}
