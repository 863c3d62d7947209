package rewind

import (
	"errors"
	"fmt"
)

// ErrInvalidCapacity is returned by New when Options.Capacity is not positive.
// It is the only error that aborts construction.
var ErrInvalidCapacity = errors.New("rewind: capacity must be positive")

// SaveError wraps a failure to persist state during a mutating call. The
// in-memory mutation has already happened when it is returned; only the
// durable copy is behind.
type SaveError struct {
	Locator string
	Err     error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("rewind: save state to %q failed: %v", e.Locator, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
