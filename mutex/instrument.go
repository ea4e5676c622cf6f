// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package mutex

import (
	"context"

	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/locker/xmetrics"
)

// InstrumentOption represents a configurable option for instrumenting a mutex
type InstrumentOption func(*instrumentedMutex)

// WithAcquisitions establishes a metric that counts successful lock acquisitions.  If a nil
// counter is supplied, acquisitions are discarded.
func WithAcquisitions(a xmetrics.Adder) InstrumentOption {
	return func(i *instrumentedMutex) {
		if a != nil {
			i.acquisitions = a
		} else {
			i.acquisitions = discard.NewCounter()
		}
	}
}

// WithFailures establishes a metric that counts failed locks and unlocks.  A TryLock that
// returns false is contention, not a failure.  If a nil counter is supplied, failures are discarded.
func WithFailures(a xmetrics.Adder) InstrumentOption {
	return func(i *instrumentedMutex) {
		if a != nil {
			i.failures = a
		} else {
			i.failures = discard.NewCounter()
		}
	}
}

// Instrument decorates an existing mutex with a set of options.  The decorated mutex's Handle
// is the decorator itself, so condition waits are counted too.
func Instrument(m Interface, o ...InstrumentOption) Interface {
	if m == nil {
		panic("A delegate mutex is required")
	}

	im := &instrumentedMutex{
		Interface:    m,
		acquisitions: discard.NewCounter(),
		failures:     discard.NewCounter(),
	}

	for _, f := range o {
		f(im)
	}

	return im
}

type instrumentedMutex struct {
	Interface
	acquisitions xmetrics.Adder
	failures     xmetrics.Adder
}

func (im *instrumentedMutex) locked(err error) error {
	if err != nil {
		im.failures.Add(1.0)
	} else {
		im.acquisitions.Add(1.0)
	}

	return err
}

func (im *instrumentedMutex) Lock() error {
	return im.locked(im.Interface.Lock())
}

func (im *instrumentedMutex) LockCtx(ctx context.Context) error {
	return im.locked(im.Interface.LockCtx(ctx))
}

func (im *instrumentedMutex) TryLock() bool {
	if im.Interface.TryLock() {
		im.acquisitions.Add(1.0)
		return true
	}

	return false
}

func (im *instrumentedMutex) Unlock() error {
	err := im.Interface.Unlock()
	if err != nil {
		im.failures.Add(1.0)
	}

	return err
}

func (im *instrumentedMutex) Do(f func() error) error {
	return do(im, f)
}

func (im *instrumentedMutex) Handle() Handle {
	return im
}
