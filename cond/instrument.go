// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cond

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/locker"
	"github.com/xmidt-org/locker/xmetrics"
)

// InstrumentOption represents a configurable option for instrumenting a condition variable
type InstrumentOption func(*instrumentedCond)

// WithSignals establishes a metric that counts successful calls to Signal and Broadcast.
// If a nil counter is supplied, signals are discarded.
func WithSignals(a xmetrics.Adder) InstrumentOption {
	return func(i *instrumentedCond) {
		if a != nil {
			i.signals = a
		} else {
			i.signals = discard.NewCounter()
		}
	}
}

// WithTimeouts establishes a metric that counts bounded waits that expired, either a TimedWait
// returning locker.ErrTimeout or a WaitCtx whose context deadline was exceeded.  If a nil counter
// is supplied, timeouts are discarded.
func WithTimeouts(a xmetrics.Adder) InstrumentOption {
	return func(i *instrumentedCond) {
		if a != nil {
			i.timeouts = a
		} else {
			i.timeouts = discard.NewCounter()
		}
	}
}

// Instrument decorates an existing condition variable with a set of options.
func Instrument(c Interface, o ...InstrumentOption) Interface {
	if c == nil {
		panic("A delegate condition variable is required")
	}

	ic := &instrumentedCond{
		Interface: c,
		signals:   discard.NewCounter(),
		timeouts:  discard.NewCounter(),
	}

	for _, f := range o {
		f(ic)
	}

	return ic
}

type instrumentedCond struct {
	Interface
	signals  xmetrics.Adder
	timeouts xmetrics.Adder
}

func (ic *instrumentedCond) TimedWait(l Locker, deadline time.Time) error {
	err := ic.Interface.TimedWait(l, deadline)
	if errors.Is(err, locker.ErrTimeout) {
		ic.timeouts.Add(1.0)
	}

	return err
}

func (ic *instrumentedCond) WaitCtx(ctx context.Context, l Locker) error {
	err := ic.Interface.WaitCtx(ctx, l)
	if errors.Is(err, context.DeadlineExceeded) {
		ic.timeouts.Add(1.0)
	}

	return err
}

func (ic *instrumentedCond) Signal() error {
	err := ic.Interface.Signal()
	if err == nil {
		ic.signals.Add(1.0)
	}

	return err
}

func (ic *instrumentedCond) Broadcast() error {
	err := ic.Interface.Broadcast()
	if err == nil {
		ic.signals.Add(1.0)
	}

	return err
}
