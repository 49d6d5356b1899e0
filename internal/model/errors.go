package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the API boundary can map them to a
// response status.
type ErrorKind string

// Error kinds.
const (
	KindUnauthenticated ErrorKind = "UNAUTHENTICATED"
	KindForbidden       ErrorKind = "FORBIDDEN"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindInvalidState    ErrorKind = "INVALID_STATE"
	KindValidation      ErrorKind = "VALIDATION_ERROR"
	KindConflict        ErrorKind = "CONFLICT"
	KindStorage         ErrorKind = "STORAGE_ERROR"
)

// AppError is a classified application error.
type AppError struct {
	Kind    ErrorKind
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

// NewUnauthenticatedError reports a missing or invalid identity.
func NewUnauthenticatedError(message string) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: message}
}

// NewForbiddenError reports a failed role or ownership check.
func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

// NewNotFoundError reports that resource does not resolve.
func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

// NewInvalidStateError reports an operation against an entity in an
// incompatible status.
func NewInvalidStateError(message string) *AppError {
	return &AppError{Kind: KindInvalidState, Message: message}
}

// NewValidationError reports a malformed or incomplete request.
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewConflictError reports a uniqueness violation.
func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// NewStorageError wraps an unclassified persistence failure.
func NewStorageError(err error) *AppError {
	return &AppError{Kind: KindStorage, Message: "internal error", Err: err}
}

// KindOf returns the kind of err. Errors that are not AppErrors are storage
// failures.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
