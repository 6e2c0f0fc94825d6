package service

import (
	"errors"
	"fmt"
)

// AuthError reports a credential or session failure: invalid credentials,
// duplicate account, weak password, unconfirmed email. The message is meant
// for the end user.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// NewAuthError creates an AuthError with a formatted message.
func NewAuthError(format string, args ...any) *AuthError {
	return &AuthError{Message: fmt.Sprintf(format, args...)}
}

// OperationError reports a failed task operation: network failure,
// authorization failure, constraint violation. Op names the operation
// that failed ("load", "add", "toggle", "delete").
type OperationError struct {
	Op      string
	Message string
}

func (e *OperationError) Error() string { return e.Op + ": " + e.Message }

// NewOperationError creates an OperationError with a formatted message.
func NewOperationError(op, format string, args ...any) *OperationError {
	return &OperationError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsAuthError reports whether err is or wraps an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsOperationError reports whether err is or wraps an OperationError.
func IsOperationError(err error) bool {
	var oe *OperationError
	return errors.As(err, &oe)
}

// UserMessage extracts the human-readable message from a tagged error.
// Untagged errors fall back to Error().
func UserMessage(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Message
	}
	var oe *OperationError
	if errors.As(err, &oe) {
		return oe.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
