// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package mutex provides an exclusive, non-recursive lock whose operations report failure
instead of crashing the process.

Unlocking a Mutex that is not held returns locker.ErrNotLocked, and a closed Mutex returns
locker.ErrClosed from every operation.  The lock itself is exposed through Handle, which is the
form accepted by the wait operations in package cond.
*/
package mutex
