// Package dErrors provides coded domain errors shared across services,
// stores, and transport. Codes are stable strings rendered directly in API
// responses; messages are for operators and may be suppressed at the edge.
package dErrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of domain error.
type Code string

// Generic codes.
const (
	CodeInternal           Code = "internal_error"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInvariantViolation Code = "invariant_violation"
)

// Ledger codes. These mirror the asset engine's error taxonomy one-to-one so
// callers can branch on the exact failure.
const (
	CodeNoIdAvailable       Code = "no_id_available"
	CodeIdUnavailable       Code = "id_unavailable"
	CodeIdAlreadyTaken      Code = "id_already_taken"
	CodeInsufficientBalance Code = "insufficient_balance"
	CodeZeroAmount          Code = "zero_amount"
	CodeNoMintPermission    Code = "no_mint_permission"
	CodeNoBurnPermission    Code = "no_burn_permission"
	CodeNoUpdatePermission  Code = "no_update_permission"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// CodeOf returns the outermost code, or CodeInternal if err is not coded.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Is delegates to errors.Is so callers don't need both imports.
func Is(err, target error) bool { return errors.Is(err, target) }
