// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package stress runs contention scenarios against the semaphore, mutex, and cond primitives
// and verifies that their invariants hold under load.
package stress
