// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the time source used by bounded waits, so that deadlines can be
// driven deterministically in tests.
package clock

import "time"

// Interface represents a clock with the subset of the stdlib time package that bounded waits need
type Interface interface {
	Now() time.Time
	Sleep(time.Duration)
	NewTimer(time.Duration) Timer
}

type systemClock struct{}

func (sc systemClock) Now() time.Time {
	return time.Now()
}

func (sc systemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (sc systemClock) NewTimer(d time.Duration) Timer {
	return systemTimer{time.NewTimer(d)}
}

// System returns a clock backed by the time package
func System() Interface {
	return systemClock{}
}

// Until returns the duration from c's current time to the given absolute deadline.  The result
// is nonpositive if the deadline has already passed.
func Until(c Interface, deadline time.Time) time.Duration {
	return deadline.Sub(c.Now())
}
