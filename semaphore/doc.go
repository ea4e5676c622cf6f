// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package semaphore provides a channel-based counting semaphore with wait/post semantics.

A semaphore holds a count between zero and a configured maximum.  Wait blocks until the
count is positive and then decrements it.  Post increments the count, waking one waiter.
Unlike a resource pool, a semaphore may be created with a count of zero and posted to by
goroutines that never waited on it, which makes it suitable for signaling.

Close releases the semaphore.  Any goroutines blocked in a wait return locker.ErrClosed.
*/
package semaphore
