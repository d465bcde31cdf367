// Package errors carries the small taxonomy of error kinds the orchestrator
// and boundary layer agree on. Each kind is a sentinel that callers wrap
// with fmt.Errorf("...: %w", kind) so errors.Is and Kind() both work.
package errors

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure the way the Boundary needs to: which
// status code to return and whether the condition is user-visible at all.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAlreadyExists
	KindNotFound
	KindUnrecoverable
	KindAuthFailure
	KindTransientBackend
	KindUploadFailed
	KindInternal
)

var (
	// ErrAlreadyExists: upload collision on (owner_id, original_filename).
	ErrAlreadyExists = errors.New("file already exists")
	// ErrNotFound: no shard rows for the requested file.
	ErrNotFound = errors.New("file not found")
	// ErrUnrecoverable: fewer than k shards could be recovered at read time.
	ErrUnrecoverable = errors.New("not enough shards to reconstruct the file")
	// ErrAuthFailure: bearer token missing or failed to resolve to an owner.
	ErrAuthFailure = errors.New("authentication failed")
	// ErrTransientBackend: a single backend call failed but was tolerated.
	ErrTransientBackend = errors.New("transient backend failure")
	// ErrUploadFailed: upload could not complete and was rolled back.
	ErrUploadFailed = errors.New("upload failed")
	// ErrInternal: anything else — codec bug, metadata outage, etc.
	ErrInternal = errors.New("internal error")

	// ErrMissingRequiredFields and ErrEmptyFile are request-validation
	// sentinels; nothing in this module returns them, and the boundary
	// accepts empty uploads.
	ErrMissingRequiredFields = errors.New("missing required fields")
	ErrEmptyFile              = errors.New("cannot upload empty file")
)

// Kind classifies err against the taxonomy above. Errors not wrapping any
// of the sentinels classify as KindUnknown; the boundary treats that the
// same as KindInternal.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnrecoverable):
		return KindUnrecoverable
	case errors.Is(err, ErrAuthFailure):
		return KindAuthFailure
	case errors.Is(err, ErrTransientBackend):
		return KindTransientBackend
	case errors.Is(err, ErrUploadFailed):
		return KindUploadFailed
	case errors.Is(err, ErrInternal):
		return KindInternal
	default:
		return KindUnknown
	}
}

// Wrap attaches a kind sentinel to err with additional context, keeping
// errors.Is(result, kind) true.
func Wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}

// FetchingResourceError generates a formatted error for a failed fetch of
// any resource by its id.
func FetchingResourceError(resource string) error {
	return fmt.Errorf("failed to fetch %s by id: %w", resource, ErrInternal)
}

// ConfigNotSetError reports a required configuration key that was never set.
func ConfigNotSetError(config string) error {
	return fmt.Errorf("the %s configuration value must be set", config)
}
