package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the client and the stub backend.
var (
	// ErrProfileNotFound indicates the requested profile does not exist.
	// HTTP Status: 404 Not Found
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidValue indicates a profile field update with a value of the wrong type.
	// HTTP Status: 400 Bad Request
	ErrInvalidValue = errors.New("invalid field value")

	// ErrNoImage indicates an operation that needs a photo was triggered without one.
	ErrNoImage = errors.New("no image selected")

	// ErrRequestInFlight indicates a screen already has an outstanding request.
	ErrRequestInFlight = errors.New("request already in flight")

	// ErrCancelled indicates the user backed out of a dialog or picker.
	ErrCancelled = errors.New("cancelled")
)

// ValidationError lists required form fields that were left empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// UnknownFieldError is returned for a form field name that does not exist.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Name)
}
