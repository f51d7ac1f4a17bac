// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (entry id taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation indicates rejected caller input.
	ErrValidation = errors.New("validation")
)
