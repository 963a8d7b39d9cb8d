package services

import (
	"errors"
	"fmt"
)

// Domain errors translated to HTTP responses by the handlers.
var (
	ErrUnauthorized       = errors.New("UNAUTHORIZED")
	ErrForbidden          = errors.New("FORBIDDEN")
	ErrJWTSecretMissing   = errors.New("JWT_SECRET_MISSING")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
)

// ValidationError rejects client input. Reason is shown to the user as is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError is ErrNotFound with a message meant for the client.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// OperatorError is a server-side failure (missing credentials, storage
// provider errors) whose message helps operators fix the deployment.
type OperatorError struct {
	Message string
	Err     error
}

func (e *OperatorError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *OperatorError) Unwrap() error {
	return e.Err
}
