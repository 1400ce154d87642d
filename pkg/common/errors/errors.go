package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common sentinel errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("rate limited")
	ErrUpstream     = errors.New("upstream service error")
)

// AppError represents an application-specific error with an HTTP status code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// FromStatus wraps an upstream HTTP status into the matching sentinel.
func FromStatus(status int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, ErrUnauthorized)
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	case status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w", msg, ErrConflict)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", msg, ErrRateLimited)
	case status >= 400 && status < 500:
		return fmt.Errorf("%s: %w", msg, ErrInvalidInput)
	default:
		return fmt.Errorf("%s: %w", msg, ErrUpstream)
	}
}

// MapError maps a common error to an AppError with an appropriate HTTP status code.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}

	// Check for existing AppError
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	// Map sentinel errors
	if errors.Is(err, ErrInvalidInput) {
		return NewAppError(http.StatusBadRequest, "Invalid request", err)
	}
	if errors.Is(err, ErrNotFound) {
		return NewAppError(http.StatusNotFound, "Resource not found", err)
	}
	if errors.Is(err, ErrUnauthorized) {
		return NewAppError(http.StatusUnauthorized, "Unauthorized", err)
	}
	if errors.Is(err, ErrConflict) {
		return NewAppError(http.StatusConflict, "Conflict", err)
	}
	if errors.Is(err, ErrRateLimited) {
		return NewAppError(http.StatusTooManyRequests, "Rate limit exceeded, try again shortly", err)
	}
	if errors.Is(err, ErrUpstream) {
		return NewAppError(http.StatusBadGateway, "Upstream service failed", err)
	}

	// Default to internal server error
	return NewAppError(http.StatusInternalServerError, "Internal server error", err)
}
