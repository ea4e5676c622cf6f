// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package locker holds the error taxonomy shared by the scoped synchronization primitives
in the semaphore, mutex, and cond subpackages.

Every primitive is created by a fallible constructor and released with Close, which is
normally deferred immediately after construction:

	s, err := semaphore.NewCount(2)
	if err != nil {
		return err
	}

	defer s.Close()

Operations report failure through their error return.  They never retry.
*/
package locker
