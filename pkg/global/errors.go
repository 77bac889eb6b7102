package global

import (
	"errors"
	"fmt"
)

// Error kinds. Services wrap these so callers can branch with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrStorage      = errors.New("storage failure")
)

// Error carries a kind plus the field it concerns, if any.
type Error struct {
	Kind    error
	Field   string
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(field, code, message string) *Error {
	return &Error{Kind: ErrValidation, Field: field, Code: code, Message: message}
}

func NotFound(field, format string, args ...any) *Error {
	return &Error{Kind: ErrNotFound, Field: field, Code: "not_found", Message: fmt.Sprintf(format, args...)}
}

func Conflict(field, message string) *Error {
	return &Error{Kind: ErrConflict, Field: field, Code: "conflict", Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: ErrUnauthorized, Code: "unauthorized", Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: ErrForbidden, Code: "forbidden", Message: message}
}

func Storage(message string, err error) *Error {
	return &Error{Kind: ErrStorage, Code: "storage", Message: message, Err: err}
}

// ValidationErrors collects several field problems into one error.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, v[0].Field, v[0].Message)
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// FieldErrors flattens any service error into the response error list.
func FieldErrors(err error) []ValidationError {
	var many ValidationErrors
	if errors.As(err, &many) {
		return many
	}
	var one *Error
	if errors.As(err, &one) && one.Field != "" {
		return []ValidationError{{Field: one.Field, Message: one.Message, Code: one.Code}}
	}
	return nil
}
