// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apperrors defines the error kinds surfaced by the generation path.
// Callers match kinds with errors.Is against the sentinel values and read the
// kind for logs and metrics with KindOf.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind names a class of failure.
type Kind string

const (
	KindUnknown              Kind = "unknown"
	KindInvalidRequest       Kind = "invalid_request"
	KindAttachmentUnreadable Kind = "attachment_unreadable"
	KindEmptyResponse        Kind = "empty_response"
	KindSchemaViolation      Kind = "schema_violation"
	KindServiceUnavailable   Kind = "service_unavailable"
)

// Error is a classified failure. Err holds the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrEmptyResponse)
// holds for every empty-response failure regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Sentinels for errors.Is.
var (
	ErrInvalidRequest       = New(KindInvalidRequest, "invalid request")
	ErrAttachmentUnreadable = New(KindAttachmentUnreadable, "attachment unreadable")
	ErrEmptyResponse        = New(KindEmptyResponse, "empty response")
	ErrSchemaViolation      = New(KindSchemaViolation, "schema violation")
	ErrServiceUnavailable   = New(KindServiceUnavailable, "service unavailable")
)

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
