// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package xmetrics provides a Prometheus registry that doubles as a go-kit metrics provider.

The instrumentation decorators in the semaphore, mutex, and cond packages accept the small
interfaces in this package, so any go-kit or Prometheus metric can be plugged in.
*/
package xmetrics
