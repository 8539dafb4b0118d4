package newsletter

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidRequest is returned when a publish request fails validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUploadFailed is returned when the asset store rejects the image.
	// Nothing is persisted.
	ErrUploadFailed = errors.New("asset upload failed")
	// ErrPersistenceFailed is returned when the record could not be written.
	// Nothing is broadcast.
	ErrPersistenceFailed = errors.New("newsletter persistence failed")
	// ErrDirectoryUnavailable is returned when recipients could not be read.
	// The record stays persisted.
	ErrDirectoryUnavailable = errors.New("recipient directory unavailable")
	// ErrNotFound is returned when no newsletter has the requested id.
	ErrNotFound = errors.New("newsletter not found")
)

// ValidationError lists the fields that failed validation. It matches
// ErrInvalidRequest with errors.Is.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}
