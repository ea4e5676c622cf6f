// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package cond provides a condition variable with bounded waits.

A condition variable never owns a lock.  Each wait operation is handed a Locker that the
caller already holds.  The wait releases that Locker, parks until signaled, and reacquires it
before returning, whatever the outcome.  Holding the lock across the check-then-wait is the
caller's obligation and is not verified here.

	m := mutex.New(nil)
	c := cond.New(nil)

	m.Lock()
	for !ready {
		if err := c.TimedWait(m.Handle(), deadline); err != nil {
			break
		}
	}

	m.Unlock()
*/
package cond
