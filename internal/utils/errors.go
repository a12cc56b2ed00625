package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an AppError so transports can pick a status code.
type ErrorKind int

const (
	// KindInternal marks defects and dependency failures.
	KindInternal ErrorKind = iota
	// KindInvalid marks malformed caller input.
	KindInvalid
)

// AppError wraps an operation, human-facing message, and underlying error.
type AppError struct {
	Op      string
	Kind    ErrorKind
	Msg     string
	Err     error
	Details map[string]string
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an internal AppError.
func NewAppError(op, msg string, err error) error {
	return &AppError{Op: op, Kind: KindInternal, Msg: msg, Err: err}
}

// NewInvalidError constructs an AppError describing bad input.
func NewInvalidError(op, msg string, details map[string]string) error {
	return &AppError{Op: op, Kind: KindInvalid, Msg: msg, Details: details}
}

// AsAppError extracts the outermost AppError in the chain, if any.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsInvalid reports whether err carries an invalid-input AppError.
func IsInvalid(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == KindInvalid
}
