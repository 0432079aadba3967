package services

import "errors"

// Domain error taxonomy. Services wrap these sentinels with context via
// fmt.Errorf("...: %w", ...); the HTTP layer maps them to statuses with
// errors.Is.
var (
	// ErrNotFound means a referenced group, user or expense does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden means the caller is authenticated but not authorized
	// for the group or role the operation requires.
	ErrForbidden = errors.New("access denied")

	// ErrConflict means the operation would duplicate existing state,
	// e.g. adding a user who is already a group member.
	ErrConflict = errors.New("conflict")

	// ErrInvalidState means the operation violates a domain invariant,
	// e.g. splitting in an empty group or removing the last admin.
	ErrInvalidState = errors.New("invalid state")

	// ErrBadRequest means the input is malformed.
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthenticated means a credential check failed at login.
	ErrUnauthenticated = errors.New("authentication failed")
)
