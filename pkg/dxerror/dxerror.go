// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package dxerror defines the tagged error taxonomy used across the gateway.
// Every failure surfaced to a tool is an *Error carrying a Kind; the HTTP
// status to Kind mapping lives here and is the single source of truth.
package dxerror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a class of failure. The set is closed; formatters dispatch
// on it to render remediation guidance.
type Kind string

const (
	KindInvalidArgument     Kind = "INVALID_ARGUMENT"
	KindConfigInvalid       Kind = "CONFIG_INVALID"
	KindAuthFailed          Kind = "AUTH_FAILED"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindForbidden           Kind = "FORBIDDEN"
	KindNotFound            Kind = "NOT_FOUND"
	KindBadRequest          Kind = "BAD_REQUEST"
	KindPreconditionFailed  Kind = "PRECONDITION_FAILED"
	KindConflict            Kind = "CONFLICT"
	KindValidationFail      Kind = "VALIDATION_FAIL"
	KindLocked              Kind = "LOCKED"
	KindFailedDependency    Kind = "FAILED_DEPENDENCY"
	KindInternalServerError Kind = "INTERNAL_SERVER_ERROR"
	KindConnectionError     Kind = "CONNECTION_ERROR"
	KindTimeout             Kind = "TIMEOUT"
	KindETagFetchFailed     Kind = "ETAG_FETCH_FAILED"
	KindETagMissing         Kind = "ETAG_MISSING"
	KindRegistryFailed      Kind = "REGISTRY_FAILED"
)

// Detail is one entry of the upstream's errorDetails[] convention.
type Detail struct {
	Message          string `json:"message"`
	LocalizedValue   string `json:"localizedValue,omitempty"`
	ValidationPath   string `json:"erroneousInputOutputFieldInPage,omitempty"`
	ClassIdentifier  string `json:"erroneousInputOutputIdentifier,omitempty"`
	MessageParameter string `json:"messageParameters,omitempty"`
}

// Error is the tagged domain error. Status is the upstream HTTP status when
// the error originated from an HTTP response, zero otherwise.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Details []Detail
	// Cause is the wrapped lower-level error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given kind and formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error with the given kind whose message and cause come from
// err. Wrapping an *Error of the same kind returns it unchanged.
func Wrap(kind Kind, err error) *Error {
	var de *Error
	if errors.As(err, &de) && de.Kind == kind {
		return de
	}
	return &Error{Kind: kind, Message: err.Error(), Cause: err}
}

// As extracts an *Error from err, or wraps err as an internal error so callers
// always have a tagged error to format.
func As(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return &Error{Kind: KindInternalServerError, Message: err.Error(), Cause: err}
}

// statusKinds is the HTTP status to Kind mapping. Statuses not listed map to
// KindInternalServerError for 5xx and KindBadRequest for remaining 4xx.
var statusKinds = map[int]Kind{
	http.StatusBadRequest:          KindBadRequest,
	http.StatusUnauthorized:        KindUnauthorized,
	http.StatusForbidden:           KindForbidden,
	http.StatusNotFound:            KindNotFound,
	http.StatusConflict:            KindConflict,
	http.StatusPreconditionFailed:  KindPreconditionFailed,
	http.StatusUnprocessableEntity: KindValidationFail,
	http.StatusLocked:              KindLocked,
	http.StatusFailedDependency:    KindFailedDependency,
	http.StatusInternalServerError: KindInternalServerError,
}

// FromStatus maps an HTTP status code to its error Kind.
func FromStatus(status int) Kind {
	if kind, ok := statusKinds[status]; ok {
		return kind
	}
	if status >= 500 {
		return KindInternalServerError
	}
	return KindBadRequest
}

// FromHTTP builds an Error for an upstream HTTP failure.
func FromHTTP(status int, message string, details []Detail) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{
		Kind:    FromStatus(status),
		Message: message,
		Status:  status,
		Details: details,
	}
}
