// Package fault defines the typed failures produced while solving a floor
// plan. Every failure is scoped to a single room: the solver reports it as
// that room's result and keeps going with the siblings.
package fault

import (
	"errors"
	"fmt"
)

// Code identifies the kind of failure.
type Code string

const (
	CodeOK                  Code = "OK"
	CodeInvalidGeometry     Code = "INVALID_GEOMETRY"
	CodeTriangulationFailed Code = "TRIANGULATION_FAILED"
	CodeEmptyGuardGroup     Code = "EMPTY_GUARD_GROUP"
	CodeMissingField        Code = "MISSING_FIELD"
	CodeInvalidDocument     Code = "INVALID_DOCUMENT"
	CodeTimeout             Code = "TIMEOUT"
	CodeCanceled            Code = "CANCELED"
	CodeInternal            Code = "INTERNAL"
)

func (c Code) String() string {
	return string(c)
}

// Error is a failure with a code, a human readable message and optional
// metadata such as the room or field it concerns.
type Error struct {
	Code    Code                   `json:"code" yaml:"code"`
	Message string                 `json:"message" yaml:"message"`
	Cause   error                  `json:"-" yaml:"-"`
	Meta    map[string]interface{} `json:"meta,omitempty" yaml:"meta,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code. This lets
// callers write errors.Is(err, fault.New(fault.CodeTimeout, "")).
func (e *Error) Is(target error) bool {
	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// WithMeta attaches a metadata entry and returns the error for chaining.
func (e *Error) WithMeta(key string, value interface{}) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]interface{})
	}
	e.Meta[key] = value
	return e
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err, keeping its code (and metadata) if it already is an *Error.
// Anything else becomes CodeInternal.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Code:    existing.Code,
			Message: message,
			Cause:   err,
			Meta:    copyMeta(existing.Meta),
		}
	}
	return &Error{Code: CodeInternal, Message: message, Cause: err}
}

func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps err under an explicit code.
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	var meta map[string]interface{}
	if errors.As(err, &existing) {
		meta = copyMeta(existing.Meta)
	}
	return &Error{Code: code, Message: message, Cause: err, Meta: meta}
}

func copyMeta(meta map[string]interface{}) map[string]interface{} {
	if meta == nil {
		return nil
	}
	out := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
