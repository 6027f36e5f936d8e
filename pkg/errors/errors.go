// Package errors defines the typed error taxonomy shared by services and the
// HTTP layer. Services return *Error values with a Code; api/responses maps
// the code to an HTTP status and a public message, so internal text never
// leaks to clients.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport mapping and retry decisions.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata carries the transport behavior for a code. DetailsAllowed gates
// whether structured details may be echoed to the client.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

func meta(status int, retryable, detailsAllowed bool, publicMessage string) Metadata {
	return Metadata{
		HTTPStatus:     status,
		Retryable:      retryable,
		PublicMessage:  publicMessage,
		DetailsAllowed: detailsAllowed,
	}
}

// Workflow transitions that are valid requests against the wrong state
// (sending a sent envelope, signing out of turn) get 422, not 409.
var metadataByCode = map[Code]Metadata{
	CodeValidation:    meta(http.StatusBadRequest, false, true, "validation failed"),
	CodeUnauthorized:  meta(http.StatusUnauthorized, false, false, "authentication required"),
	CodeForbidden:     meta(http.StatusForbidden, false, false, "access denied"),
	CodeNotFound:      meta(http.StatusNotFound, false, false, "resource not found"),
	CodeConflict:      meta(http.StatusConflict, false, false, "conflict detected"),
	CodeStateConflict: meta(http.StatusUnprocessableEntity, false, true, "state transition disallowed"),
	CodeIdempotency:   meta(http.StatusConflict, false, true, "idempotency key reused"),
	CodeInternal:      meta(http.StatusInternalServerError, true, false, "internal server error"),
	CodeDependency:    meta(http.StatusServiceUnavailable, true, true, "dependency unavailable"),
}

// MetadataFor returns the transport metadata for code, falling back to the
// internal-error entry for codes it does not know.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is the typed error services return. The message is internal wording;
// only the code's public message crosses the API boundary unless the code
// allows details.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

// New builds a typed error without a cause.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code and message to an underlying error, preserving it for
// errors.Is/As chains.
func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails attaches structured details, typically field-level validation
// messages.
func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts the typed error from anywhere in err's chain, or nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
