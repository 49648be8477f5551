// Package apperr defines the error taxonomy shared by the workflow and
// the RPC gateway. Every error crossing the gateway boundary is an
// *Error carrying a numeric code, so handlers never leak internal
// detail to clients. Domain errors use HTTP-style codes; protocol
// errors use the reserved JSON-RPC codes.
package apperr

import (
	"errors"
	"fmt"
)

// Domain error codes surfaced in the RPC error envelope.
const (
	CodeValidation        = 400
	CodeUnauthorized      = 401
	CodeForbidden         = 403
	CodeNotFound          = 404
	CodeInvalidTransition = 409
)

// Reserved JSON-RPC 2.0 protocol codes.
const (
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInternal       = -32603
)

// Error is a client-safe error with a numeric code. Internal causes
// are wrapped and reachable via errors.Unwrap but the Message is what
// clients see.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s (code %d): %v", e.Message, e.Code, e.cause)
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

func (e *Error) Unwrap() error { return e.cause }

// Validation reports malformed or missing input.
func Validation(msg string) *Error { return &Error{Code: CodeValidation, Message: msg} }

// Unauthorized reports a missing or invalid credential.
func Unauthorized(msg string) *Error { return &Error{Code: CodeUnauthorized, Message: msg} }

// Forbidden reports a role or ownership mismatch.
func Forbidden(msg string) *Error { return &Error{Code: CodeForbidden, Message: msg} }

// NotFound reports a missing order or menu item.
func NotFound(msg string) *Error { return &Error{Code: CodeNotFound, Message: msg} }

// InvalidTransition reports an illegal order status change.
func InvalidTransition(msg string) *Error { return &Error{Code: CodeInvalidTransition, Message: msg} }

// Internal wraps an unexpected failure behind a generic message. The
// cause stays server-side for logging.
func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", cause: cause}
}

// From returns err as an *Error, wrapping unknown errors as Internal.
// A nil err returns nil.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
