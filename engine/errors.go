package engine

import (
	"errors"
	"fmt"
)

// ErrThreadCycle indicates a cyclic parent chain, which is a
// data-integrity violation rather than a supported shape. Resolvers fail
// fast instead of walking forever.
var ErrThreadCycle = errors.New("cyclic parent chain detected")

// ValidationError reports an unacceptable field in a submission. It is
// surfaced to the caller and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ForbiddenError reports that the acting user is not allowed to touch the
// target message
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// NotFoundError reports that a referenced message or actor does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsForbidden reports whether err is a ForbiddenError
func IsForbidden(err error) bool {
	var f *ForbiddenError
	return errors.As(err, &f)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}
