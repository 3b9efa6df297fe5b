package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error independently of its message so callers can
// branch on it with errors.Is.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindDuplicate         Kind = "duplicate"
	KindPermission        Kind = "permission"
	KindInvalidTransition Kind = "invalid_transition"
	KindPersistence       Kind = "persistence"
	KindNotFound          Kind = "not_found"
	KindUnauthorized      Kind = "unauthorized"
	KindBadRequest        Kind = "bad_request"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind,omitempty"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind != "" && t.Kind == e.Kind
}

// Common errors
var (
	ErrNotFound          = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrUnauthorized      = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrForbidden         = &AppError{Code: http.StatusForbidden, Kind: KindPermission, Message: "Forbidden"}
	ErrBadRequest        = &AppError{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "Bad request"}
	ErrValidation        = &AppError{Code: http.StatusUnprocessableEntity, Kind: KindValidation, Message: "Validation failed"}
	ErrDuplicate         = &AppError{Code: http.StatusConflict, Kind: KindDuplicate, Message: "Duplicate record"}
	ErrInvalidTransition = &AppError{Code: http.StatusConflict, Kind: KindInvalidTransition, Message: "Invalid status transition"}
	ErrPersistence       = &AppError{Code: http.StatusInternalServerError, Kind: KindPersistence, Message: "Storage operation failed"}
	ErrInternalServer    = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewFieldError is a shortcut for a validation error on a single field.
func NewFieldError(field, message string) *AppError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewDuplicateError reports a collision with an existing record. The
// conflicting record's display name ends up in the message.
func NewDuplicateError(resource, conflicting string) *AppError {
	msg := resource + " already exists"
	if conflicting != "" {
		msg = fmt.Sprintf("%s already exists: %s", resource, conflicting)
	}
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindDuplicate,
		Message: msg,
	}
}

// NewPermissionError creates a forbidden error with a custom message
func NewPermissionError(message string) *AppError {
	return &AppError{
		Code:    http.StatusForbidden,
		Kind:    KindPermission,
		Message: message,
	}
}

// NewInvalidTransitionError explains why a status change is not allowed.
func NewInvalidTransitionError(from, to fmt.Stringer) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("Cannot change status from %s to %s", from, to),
	}
}

// NewInvalidStateError is an invalid transition with a free-form reason.
func NewInvalidStateError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInvalidTransition,
		Message: message,
	}
}

// NewPersistenceError wraps a storage failure for the named operation.
func NewPersistenceError(op string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindPersistence,
		Message: "Storage operation failed (" + op + ")",
		Err:     err,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// KindOf returns the kind of err, or "" when err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
