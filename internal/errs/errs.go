// Package errs defines the error taxonomy shared by the tool-call gateway,
// the broadcast hub and the call-setup client.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies an error for the caller.
type Code string

const (
	CodeValidation   Code = "validation"
	CodeNotFound     Code = "not_found"
	CodePrecondition Code = "precondition"
	CodeTransport    Code = "transport"
	CodeInternal     Code = "internal"
)

// Sentinels for errors.Is matching by code.
var (
	ErrValidation   = &Error{Code: CodeValidation}
	ErrNotFound     = &Error{Code: CodeNotFound}
	ErrPrecondition = &Error{Code: CodePrecondition}
	ErrTransport    = &Error{Code: CodeTransport}
	ErrInternal     = &Error{Code: CodeInternal}
)

// Error carries a code, a message fit for narration and optional details.
type Error struct {
	Code    Code
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Validation returns a validation error.
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Precondition returns a precondition error listing every unmet rule.
func Precondition(message string, details ...string) *Error {
	return &Error{Code: CodePrecondition, Message: message, Details: details}
}

// Transport wraps a downstream delivery failure.
func Transport(err error, format string, args ...any) *Error {
	return &Error{Code: CodeTransport, Message: fmt.Sprintf(format, args...), Err: err}
}

// Internal wraps an unexpected failure.
func Internal(err error, format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the code of err, or CodeInternal when err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
