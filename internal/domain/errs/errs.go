// Package errs holds sentinel errors shared across packages.
package errs

import "errors"

var (
	// ErrNotFound is returned when a row with the requested id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a status change is not permitted from the current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidTemplate is returned for output templates with placeholders outside the whitelist.
	ErrInvalidTemplate = errors.New("invalid file name template")

	// ErrProgramRunning is returned when another daemon already owns the database.
	ErrProgramRunning = errors.New("another instance is already running")
)
