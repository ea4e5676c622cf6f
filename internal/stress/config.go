// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package stress

import (
	"errors"
	"time"
)

const (
	DefaultWorkers    = 8
	DefaultIterations = 1000
	DefaultPermits    = 3
	DefaultRounds     = 1000
	DefaultTimeout    = time.Second
)

var (
	errInvalidWorkers    = errors.New("workers must be positive")
	errInvalidIterations = errors.New("iterations must be positive")
	errInvalidPermits    = errors.New("permits must be positive")
	errInvalidRounds     = errors.New("rounds must be positive")
	errInvalidTimeout    = errors.New("timeout must be positive")
	errInvalidHold       = errors.New("hold cannot be negative")
)

// Config describes the load applied by each scenario.
type Config struct {
	// Workers is the number of goroutines contending in the Permits and Exclusion scenarios.
	Workers int

	// Iterations is the number of acquisitions each worker makes.
	Iterations int

	// Permits is the initial count of the semaphore in the Permits scenario.
	Permits int

	// Rounds is the number of times each player takes its turn in the Handoff scenario.
	Rounds int

	// Timeout bounds each condition wait in the Handoff scenario.
	Timeout time.Duration

	// Hold is how long a worker sleeps while it holds a permit or the lock.  Zero means no sleep.
	Hold time.Duration
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	return Config{
		Workers:    DefaultWorkers,
		Iterations: DefaultIterations,
		Permits:    DefaultPermits,
		Rounds:     DefaultRounds,
		Timeout:    DefaultTimeout,
	}
}

// Validate checks that every field describes a runnable load.
func (c Config) Validate() error {
	switch {
	case c.Workers < 1:
		return errInvalidWorkers
	case c.Iterations < 1:
		return errInvalidIterations
	case c.Permits < 1:
		return errInvalidPermits
	case c.Rounds < 1:
		return errInvalidRounds
	case c.Timeout <= 0:
		return errInvalidTimeout
	case c.Hold < 0:
		return errInvalidHold
	default:
		return nil
	}
}
