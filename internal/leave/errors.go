package leave

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrForbidden is returned when the session is not allowed to manage leave
	ErrForbidden = errors.New("admin role required to manage leave quotas")

	// ErrTierInUse is returned when deleting a tier that still has employees
	ErrTierInUse = errors.New("tier still has assigned employees, a replacement tier is required")

	ErrInvalidReplacement = errors.New("replacement tier must be an existing tier other than the deleted one")
)

// ValidationError is raised before any persistence call is made. The caller's
// state is left untouched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PersistenceError wraps a failed backend write or read. It is always retryable.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed, please try again: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
