package command

import (
	"errors"
)

// Error codes carried by *Error.
const (
	// ErrCodeValidation marks options that were rejected before any request was sent.
	ErrCodeValidation = "VALIDATION"

	// ErrCodeCommand marks a failure while the command was running.
	ErrCodeCommand = "COMMAND"

	// ErrCodeNotLoggedIn marks a command that needed a connection when there was none.
	ErrCodeNotLoggedIn = "NOT_LOGGED_IN"
)

// Error is the error every command returns to the CLI exit path.
// Its text is only the flat message; the code and cause stay available to
// callers through errors.As and errors.Unwrap.
type Error struct {
	// Code is one of the ErrCode constants.
	Code string

	// Message is what the user sees.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Validation creates a validation error with the given message.
func Validation(message string) *Error {
	return &Error{Code: ErrCodeValidation, Message: message}
}

// Wrap flattens err into a command error. Errors that already are *Error
// are returned unchanged.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		return cmdErr
	}
	return &Error{Code: ErrCodeCommand, Message: err.Error(), Cause: err}
}

// AsError extracts a *Error from err, if present.
func AsError(err error) (*Error, bool) {
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		return cmdErr, true
	}
	return nil, false
}
