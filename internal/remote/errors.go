package remote

import (
	"errors"
	"fmt"
)

// TransportError means the backend could not be reached or its response could not be
// read or decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response. Message is the response's "error" field, empty
// when the backend did not send one.
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.Status)
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsServer reports whether err is a ServerError.
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// UserMessage is the text shown to the user for a failed call: the backend's own
// message when it sent one, a connection message for transport failures, and
// fallback otherwise.
func UserMessage(err error, fallback string) string {
	var se *ServerError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return fallback
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "No se pudo conectar: " + te.Err.Error()
	}
	return fallback
}
