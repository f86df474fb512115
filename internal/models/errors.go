package models

import (
	"fmt"
	"net/http"
)

// ErrorCategory classifies errors surfaced at the HTTP boundary.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation"
	ErrCatRateLimit  ErrorCategory = "rate_limit"
	ErrCatBackend    ErrorCategory = "backend"
	ErrCatInternal   ErrorCategory = "internal"
)

// AppError wraps an error with a category and HTTP status code.
type AppError struct {
	Category   ErrorCategory
	Message    string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) *AppError {
	return &AppError{Category: ErrCatValidation, Message: msg, StatusCode: http.StatusBadRequest}
}

func NewRateLimitError() *AppError {
	return &AppError{Category: ErrCatRateLimit, Message: "rate limit exceeded", StatusCode: http.StatusTooManyRequests}
}

func NewBackendError(msg string, err error) *AppError {
	return &AppError{Category: ErrCatBackend, Message: msg, StatusCode: http.StatusBadGateway, Err: err}
}

func NewInternalError(msg string, err error) *AppError {
	return &AppError{Category: ErrCatInternal, Message: msg, StatusCode: http.StatusInternalServerError, Err: err}
}
