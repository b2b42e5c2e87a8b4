package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeInvalidParameter ErrorType = "INVALID_PARAMETER"
	ErrTypeMalformedInput   ErrorType = "MALFORMED_INPUT"
	ErrTypeStorage          ErrorType = "STORAGE"
	ErrTypeNotFound         ErrorType = "NOT_FOUND"
	ErrTypeConfig           ErrorType = "CONFIG"
)

// Sentinels for errors.Is checks against an AppError's type
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrMalformedInput   = errors.New("malformed input")
	ErrNotFound         = errors.New("not found")
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches the package sentinels by error type
func (e *AppError) Is(target error) bool {
	switch target {
	case ErrInvalidParameter:
		return e.Type == ErrTypeInvalidParameter
	case ErrMalformedInput:
		return e.Type == ErrTypeMalformedInput
	case ErrNotFound:
		return e.Type == ErrTypeNotFound
	}
	return false
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewInvalidParameter creates an error for an unsupported argument or bound
func NewInvalidParameter(message string) *AppError {
	return NewAppError(ErrTypeInvalidParameter, message, nil)
}

// NewMalformedInput creates an error for input data that cannot be parsed
func NewMalformedInput(message string, cause error) *AppError {
	return NewAppError(ErrTypeMalformedInput, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the type of the first AppError in err's chain, or ""
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
