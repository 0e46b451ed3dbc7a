package backend

import "errors"

var (
	// ErrUnavailable indicates the booking backend is unreachable.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("backend request timed out")

	// ErrNotFound indicates the addressed entity no longer exists.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyHandled indicates a mutating action was rejected because
	// the appointment was already acted upon by the other party.
	ErrAlreadyHandled = errors.New("appointment already handled")
)
