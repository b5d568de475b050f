package errors

import "errors"

var (
	// ErrPermissionDenied is returned when an action needs an active session
	// and none is available.
	ErrPermissionDenied = errors.New("You do not have permission to perform this action.")
	// ErrLockNotAcquired is returned when an action needs the client lock and
	// the caller does not hold it.
	ErrLockNotAcquired = errors.New("lock not acquired")
)
