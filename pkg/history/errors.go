// ABOUTME: Error values for version history operations

package history

import "errors"

var (
	// ErrVersionNotFound is returned when a requested version number is
	// outside the history's recorded range.
	ErrVersionNotFound = errors.New("version not found")

	// ErrConcurrencyViolation is returned when a staged version no longer
	// matches the history's tail at commit time. Appends for one task must
	// be serialized by the caller; this surfacing is a programming error,
	// not a recoverable condition.
	ErrConcurrencyViolation = errors.New("concurrent append detected")

	// ErrCorruptDocument is returned when a loaded document violates the
	// chain invariants (gaps, duplicate numbers, broken links).
	ErrCorruptDocument = errors.New("corrupt history document")
)
