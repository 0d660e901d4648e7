package v1

import "errors"

// Sentinel errors for registry operations.
var (
	// ErrNoPhoto indicates a request without a photo part.
	// HTTP Status: 400 Bad Request
	ErrNoPhoto = errors.New("no photo provided")

	// ErrInvalidFilename indicates a photo part whose filename is unusable.
	// HTTP Status: 400 Bad Request
	ErrInvalidFilename = errors.New("invalid photo filename")

	// ErrNoChanges indicates an update without any fields.
	// HTTP Status: 400 Bad Request
	ErrNoChanges = errors.New("no fields to update")
)
