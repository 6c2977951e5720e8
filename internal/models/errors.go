package models

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an error for transport layers
type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeInvalid       ErrorCode = "INVALID"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	ErrCodeInternal      ErrorCode = "INTERNAL"
)

// Error is a coded domain error
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches a bare sentinel with the same code, so wrapped errors
// still satisfy errors.Is(err, ErrImportFormat).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Err == nil && t.Code == e.Code && t.Message == e.Message
}

// NewError builds a coded error
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps err with a code and message
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

var (
	// ErrImportFormat is returned when imported data is not a JSON array of tasks
	ErrImportFormat = NewError(ErrCodeInvalidFormat, "invalid data format")
	// ErrInvalidTimeRange is returned when a start time is later than the end time
	ErrInvalidTimeRange = NewError(ErrCodeInvalid, "start time cannot be later than end time")
)

// IsCode reports whether err carries the given code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
