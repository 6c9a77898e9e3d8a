// Package apperror defines the error taxonomy shared by the service and HTTP layers.
//
// Services return *AppError values wrapping one of the sentinels below; the
// handler package maps the sentinel to an HTTP status code with errors.Is.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("Validation Error")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AppError carries a sentinel, a client-facing message and, for input and
// uniqueness failures, the JSON name of the offending field.
type AppError struct {
	Err     error
	Message string
	Field   string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation on field (e.g. "email").
func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// Forbidden is an authenticated caller acting on someone else's resource.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned when a bearer token is missing, expired or forged.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// InvalidCredentials is a failed login attempt (wrong password, no password on
// the account). HTTP handlers map it to 400, matching what the client expects.
func InvalidCredentials(field, message string) *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: message,
		Field:   field,
	}
}

// UnknownAccount is a login attempt for an email nobody registered.
//
// WHY DOES IT MATCH TWO SENTINELS?
// The client treats every failed login as a 400, so the HTTP layer must see
// ErrInvalidCredentials. Services and tests still want to tell "no such
// account" apart from "wrong password", which errors.Is(err, ErrNotFound)
// does. fmt.Errorf with two %w verbs makes both checks true, and the handler
// tests ErrInvalidCredentials first so the status is 400, not 404.
func UnknownAccount(email string) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrNotFound),
		Message: "email not found",
		Field:   "email",
	}
}
