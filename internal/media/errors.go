package media

import (
	"errors"
	"fmt"
)

// PermissionDeniedError is returned when access to an image source is refused.
type PermissionDeniedError struct {
	Source Source
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied for %s: %s", e.Source, e.Reason)
}

// IsPermissionDenied reports whether err is a *PermissionDeniedError.
func IsPermissionDenied(err error) bool {
	var pe *PermissionDeniedError
	return errors.As(err, &pe)
}
