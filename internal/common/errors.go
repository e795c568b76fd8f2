// Package common defines shared constants and sentinel errors used across
// the vault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// ErrUnauthorized covers both a wrong password and a roster blob that
	// cannot be opened with the presented password. The two cases are
	// deliberately indistinguishable at login.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the session role does not allow the
	// requested operation.
	ErrForbidden = errors.New("forbidden")

	// ErrSessionClosed is returned when a result arrives for a session that
	// has already been logged out.
	ErrSessionClosed = errors.New("session closed")
)
