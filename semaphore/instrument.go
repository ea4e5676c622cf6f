// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/locker/xmetrics"
)

// InstrumentOption represents a configurable option for instrumenting a semaphore
type InstrumentOption func(*instrumentedSemaphore)

// WithResources establishes a metric that tracks the number of units taken from the semaphore
// by successful waits and not yet returned by posts.  Since posts subtract from this metric,
// it is normally a gauge.  If a nil metric is supplied, resource counts are discarded.
func WithResources(a xmetrics.Adder) InstrumentOption {
	return func(i *instrumentedSemaphore) {
		if a != nil {
			i.resources = a
		} else {
			i.resources = discard.NewCounter()
		}
	}
}

// WithFailures establishes a metric that tracks how many waits or posts failed.  A TryWait
// that returns false is not a failure.  If a nil counter is supplied, failures are discarded.
func WithFailures(a xmetrics.Adder) InstrumentOption {
	return func(i *instrumentedSemaphore) {
		if a != nil {
			i.failures = a
		} else {
			i.failures = discard.NewCounter()
		}
	}
}

// Instrument decorates an existing semaphore with a set of options.  A nil semaphore
// results in a panic.
func Instrument(s Interface, o ...InstrumentOption) Interface {
	if s == nil {
		panic("A delegate semaphore is required")
	}

	is := &instrumentedSemaphore{
		Interface: s,
		resources: discard.NewCounter(),
		failures:  discard.NewCounter(),
	}

	for _, f := range o {
		f(is)
	}

	return is
}

type instrumentedSemaphore struct {
	Interface
	resources xmetrics.Adder
	failures  xmetrics.Adder
}

func (is *instrumentedSemaphore) waited(err error) error {
	if err != nil {
		is.failures.Add(1.0)
	} else {
		is.resources.Add(1.0)
	}

	return err
}

func (is *instrumentedSemaphore) Wait() error {
	return is.waited(is.Interface.Wait())
}

func (is *instrumentedSemaphore) WaitTimer(t <-chan time.Time) error {
	return is.waited(is.Interface.WaitTimer(t))
}

func (is *instrumentedSemaphore) WaitCtx(ctx context.Context) error {
	return is.waited(is.Interface.WaitCtx(ctx))
}

func (is *instrumentedSemaphore) TryWait() bool {
	if is.Interface.TryWait() {
		is.resources.Add(1.0)
		return true
	}

	return false
}

func (is *instrumentedSemaphore) Post() error {
	err := is.Interface.Post()
	if err != nil {
		is.failures.Add(1.0)
	} else {
		is.resources.Add(-1.0)
	}

	return err
}
