// Package errors provides centralized error definitions for the application.
//
// Naming conventions:
//   - Exported errors (Err*): for errors callers check with errors.Is
//   - Sentinel errors are variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinels with context
package errors

import "errors"

// Run-level errors.
var (
	// ErrLockNotAcquired indicates another run holds the advisory lock; the
	// whole cycle is skipped, no messages processed.
	ErrLockNotAcquired = errors.New("run lock not acquired")
)

// Collaborator errors.
var (
	// ErrCalendarUnavailable indicates the calendar collaborator could not be
	// reached or rejected the request.
	ErrCalendarUnavailable = errors.New("calendar unavailable")

	// ErrFetcherUnavailable indicates the mail collaborator failed.
	ErrFetcherUnavailable = errors.New("mail fetcher unavailable")
)

// Validation errors.
var (
	// ErrInvalidConfig indicates the loaded configuration failed validation.
	ErrInvalidConfig = errors.New("invalid config")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
