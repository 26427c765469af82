package oerror

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when an entity's predicted state holds a NaN or infinite component.
	ErrInvalidState = errors.New("invalid predicted state")
	// ErrMissingReference is returned when a construction request names a source or target entity that no
	// longer exists.
	ErrMissingReference = errors.New("missing entity reference")
	// ErrUnknownShape is returned by geometry providers for shape keys they do not know.
	ErrUnknownShape = errors.New("unknown shape")
	// ErrInvalidRequest is returned for construction requests that cannot produce a usable entity.
	ErrInvalidRequest = errors.New("invalid construction request")
)

// DogfightError is an error raised by an internal logic check.
type DogfightError struct {
	Err string
}

// New formats a new DogfightError.
func New(format string, args ...any) *DogfightError {
	return &DogfightError{Err: fmt.Sprintf(format, args...)}
}

func (e *DogfightError) Error() string {
	return e.Err
}
