// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package locker

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by any operation on a primitive that has been closed, including
	// operations that were blocked at the time Close was called.
	ErrClosed = errors.New("the primitive has been closed")

	// ErrTimeout is returned when a bounded wait elapses before the primitive could be acquired
	// or signaled.  This error does not apply when using a context.  ctx.Err() is returned in that case.
	ErrTimeout = errors.New("the wait timed out")

	// ErrNotLocked is returned when unlocking a lock that is not held.
	ErrNotLocked = errors.New("the lock is not held")

	// ErrOverflow is returned when posting to a semaphore whose count is already at its maximum.
	ErrOverflow = errors.New("the semaphore count is at its maximum")
)

// InitError is returned by constructors when a primitive could not be created.  A primitive
// that fails construction is never returned to the caller.
type InitError struct {
	// Primitive names the kind of primitive, e.g. "semaphore"
	Primitive string

	// Err is the underlying cause
	Err error
}

func (ie *InitError) Error() string {
	return fmt.Sprintf("unable to initialize %s: %s", ie.Primitive, ie.Err)
}

func (ie *InitError) Unwrap() error {
	return ie.Err
}

// NewInitError wraps a cause in an InitError for the given primitive.
func NewInitError(primitive string, err error) error {
	return &InitError{
		Primitive: primitive,
		Err:       err,
	}
}

// IsInitError tests if err is, or wraps, an InitError.
func IsInitError(err error) bool {
	var ie *InitError
	return errors.As(err, &ie)
}
