// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package mutex

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/xmidt-org/locker"
	"github.com/xmidt-org/sallust"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	stateOpen   int32 = 0
	stateClosed int32 = 1
)

// Handle is the raw lock underlying a Mutex.  It is the shape condition variables use to
// release and reacquire a caller-held lock.
type Handle interface {
	Lock() error
	Unlock() error
}

// Interface represents an exclusive lock.
type Interface interface {
	io.Closer

	// Lock blocks until this goroutine has exclusive ownership.  If the mutex is closed
	// before or while waiting, locker.ErrClosed is returned.
	Lock() error

	// LockCtx is like Lock, but gives up when the context is canceled.  In that case,
	// ctx.Err() is returned.
	LockCtx(context.Context) error

	// TryLock acquires the lock if it is free, returning false immediately otherwise.
	TryLock() bool

	// Unlock releases ownership.  If the mutex is not locked, locker.ErrNotLocked is returned.
	// As with sync.Mutex, a mutex is not tied to a goroutine, so any goroutine may unlock it.
	Unlock() error

	// Do locks this mutex, invokes f, then unlocks regardless of how f exits.
	Do(f func() error) error

	// Handle returns the lock suitable for passing to a condition variable.
	Handle() Handle
}

// Options describes how to create a mutex.  A nil Options is valid.
type Options struct {
	// Logger is used to report closure.  If unset, sallust.Default() is used.
	Logger *zap.Logger `json:"-" mapstructure:"-"`
}

func (o *Options) logger() *zap.Logger {
	if o != nil && o.Logger != nil {
		return o.Logger
	}

	return sallust.Default()
}

// New creates an unlocked mutex.  Unlike a kernel mutex, creating one cannot fail.
func New(o *Options) Interface {
	return &mutex{
		c:      make(chan struct{}, 1),
		closed: make(chan struct{}),
		logger: o.logger(),
	}
}

// do holds h for the duration of f.
func do(h Handle, f func() error) (err error) {
	if err = h.Lock(); err != nil {
		return
	}

	defer func() {
		err = multierr.Append(err, h.Unlock())
	}()

	err = f()
	return
}

// mutex is a binary semaphore.  The lock is held while the channel is full.
type mutex struct {
	c chan struct{}

	state  int32
	closed chan struct{}
	logger *zap.Logger
}

func (m *mutex) checkClosed() bool {
	return atomic.LoadInt32(&m.state) == stateClosed
}

func (m *mutex) Close() error {
	if atomic.CompareAndSwapInt32(&m.state, stateOpen, stateClosed) {
		close(m.closed)
		m.logger.Debug("mutex closed", zap.Bool("locked", len(m.c) > 0))
		return nil
	}

	return locker.ErrClosed
}

func (m *mutex) Lock() error {
	if m.checkClosed() {
		return locker.ErrClosed
	}

	select {
	case m.c <- struct{}{}:
		if m.checkClosed() {
			return locker.ErrClosed
		}

		return nil

	case <-m.closed:
		return locker.ErrClosed
	}
}

func (m *mutex) LockCtx(ctx context.Context) error {
	if m.checkClosed() {
		return locker.ErrClosed
	}

	select {
	case m.c <- struct{}{}:
		if m.checkClosed() {
			return locker.ErrClosed
		}

		return nil

	case <-ctx.Done():
		return ctx.Err()

	case <-m.closed:
		return locker.ErrClosed
	}
}

func (m *mutex) TryLock() bool {
	if m.checkClosed() {
		return false
	}

	select {
	case m.c <- struct{}{}:
		return !m.checkClosed()

	default:
		return false
	}
}

func (m *mutex) Unlock() error {
	if m.checkClosed() {
		return locker.ErrClosed
	}

	select {
	case <-m.c:
		return nil

	default:
		return locker.ErrNotLocked
	}
}

func (m *mutex) Do(f func() error) error {
	return do(m, f)
}

func (m *mutex) Handle() Handle {
	return m
}
