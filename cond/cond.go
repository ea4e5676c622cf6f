// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cond

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xmidt-org/locker"
	"github.com/xmidt-org/locker/clock"
	"github.com/xmidt-org/sallust"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	stateOpen   int32 = 0
	stateClosed int32 = 1
)

// Locker is the lock a condition wait releases and reacquires.  mutex.Handle implements this interface.
type Locker interface {
	Lock() error
	Unlock() error
}

type syncLocker struct {
	sync.Locker
}

func (sl syncLocker) Lock() error {
	sl.Locker.Lock()
	return nil
}

func (sl syncLocker) Unlock() error {
	sl.Locker.Unlock()
	return nil
}

// Sync adapts a stdlib sync.Locker, such as a *sync.Mutex, for use with condition waits.
func Sync(l sync.Locker) Locker {
	return syncLocker{l}
}

// Interface represents a condition variable.
type Interface interface {
	io.Closer

	// Wait releases l, blocks until signaled, then reacquires l.  If this condition variable is
	// closed while waiting, locker.ErrClosed is returned after l is reacquired.  If l cannot be
	// released, its error is returned without blocking.
	Wait(l Locker) error

	// WaitCtx is like Wait, but gives up when the context is canceled.  In that case, ctx.Err()
	// is returned after l is reacquired.
	WaitCtx(ctx context.Context, l Locker) error

	// TimedWait is like Wait, but gives up at the given absolute deadline and returns
	// locker.ErrTimeout.  A deadline that has already passed returns locker.ErrTimeout
	// without releasing l.
	TimedWait(l Locker, deadline time.Time) error

	// Signal wakes at most one waiting goroutine.  Waiters are woken in the order they began waiting.
	Signal() error

	// Broadcast wakes every waiting goroutine.
	Broadcast() error
}

// Options describes how to create a condition variable.  A nil Options is valid.
type Options struct {
	// Clock is the time source for TimedWait.  If unset, clock.System() is used.
	Clock clock.Interface `json:"-" mapstructure:"-"`

	// Logger is used to report closure.  If unset, sallust.Default() is used.
	Logger *zap.Logger `json:"-" mapstructure:"-"`
}

func (o *Options) clock() clock.Interface {
	if o != nil && o.Clock != nil {
		return o.Clock
	}

	return clock.System()
}

func (o *Options) logger() *zap.Logger {
	if o != nil && o.Logger != nil {
		return o.Logger
	}

	return sallust.Default()
}

// New creates a condition variable with no waiters.
func New(o *Options) Interface {
	return &cond{
		closed: make(chan struct{}),
		clock:  o.clock(),
		logger: o.logger(),
	}
}

// waiter is closed to wake exactly one parked goroutine
type waiter chan struct{}

type cond struct {
	lock    sync.Mutex
	waiters []waiter

	state  int32
	closed chan struct{}
	clock  clock.Interface
	logger *zap.Logger
}

func (c *cond) checkClosed() bool {
	return atomic.LoadInt32(&c.state) == stateClosed
}

func (c *cond) Close() error {
	if atomic.CompareAndSwapInt32(&c.state, stateOpen, stateClosed) {
		c.lock.Lock()
		abandoned := len(c.waiters)
		c.waiters = nil
		close(c.closed)
		c.lock.Unlock()

		c.logger.Debug("condition variable closed", zap.Int("waiters", abandoned))
		return nil
	}

	return locker.ErrClosed
}

// enqueue parks a new waiter.  This must happen before the caller's lock is released,
// so that a signaler holding that lock always observes the waiter.
func (c *cond) enqueue() (waiter, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.checkClosed() {
		return nil, locker.ErrClosed
	}

	w := make(waiter)
	c.waiters = append(c.waiters, w)
	return w, nil
}

// remove dequeues w, returning false if a signal or broadcast already dequeued it.
func (c *cond) remove(w waiter) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	for i, candidate := range c.waiters {
		if candidate == w {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return true
		}
	}

	return false
}

// settle reports the outcome for a waiter that is no longer queued.  A closed waiter was
// signaled, while one dropped without a signal belongs to a closed condition variable.
func settle(w waiter) error {
	select {
	case <-w:
		return nil
	default:
		return locker.ErrClosed
	}
}

// wait is the common implementation of all waits.  A nil done or expired channel never fires.
func (c *cond) wait(l Locker, done <-chan struct{}, doneErr func() error, expired <-chan time.Time) (err error) {
	w, err := c.enqueue()
	if err != nil {
		return err
	}

	if err = l.Unlock(); err != nil {
		if !c.remove(w) && settle(w) == nil {
			// a signal already chose this waiter, so pass it on
			c.Signal()
		}

		return err
	}

	select {
	case <-w:

	case <-c.closed:
		err = settle(w)

	case <-done:
		if c.remove(w) {
			err = doneErr()
		} else {
			err = settle(w)
		}

	case <-expired:
		if c.remove(w) {
			err = locker.ErrTimeout
		} else {
			err = settle(w)
		}
	}

	return multierr.Append(err, l.Lock())
}

func (c *cond) Wait(l Locker) error {
	return c.wait(l, nil, nil, nil)
}

func (c *cond) WaitCtx(ctx context.Context, l Locker) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.wait(l, ctx.Done(), ctx.Err, nil)
}

func (c *cond) TimedWait(l Locker, deadline time.Time) error {
	d := clock.Until(c.clock, deadline)
	if d <= 0 {
		return locker.ErrTimeout
	}

	timer := c.clock.NewTimer(d)
	defer timer.Stop()
	return c.wait(l, nil, nil, timer.C())
}

func (c *cond) Signal() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.checkClosed() {
		return locker.ErrClosed
	}

	if len(c.waiters) > 0 {
		close(c.waiters[0])
		c.waiters = append(c.waiters[:0], c.waiters[1:]...)
	}

	return nil
}

func (c *cond) Broadcast() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.checkClosed() {
		return locker.ErrClosed
	}

	for _, w := range c.waiters {
		close(w)
	}

	c.waiters = c.waiters[:0]
	return nil
}
