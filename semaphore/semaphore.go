// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/xmidt-org/locker"
	"github.com/xmidt-org/sallust"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// MaxCount is the largest count a semaphore can hold.  New fills the initial count one unit at a
// time, so construction takes time proportional to Count.  At MaxCount that is on the order of
// tens of milliseconds.
const MaxCount = 1 << 20

const primitive = "semaphore"

const (
	stateOpen   int32 = 0
	stateClosed int32 = 1
)

var (
	errNegativeCount = errors.New("the count cannot be negative")
	errInvalidMax    = fmt.Errorf("the maximum count must be between 1 and %d", MaxCount)
	errCountTooLarge = errors.New("the count cannot exceed the maximum count")
)

// Interface represents a counting semaphore.
type Interface interface {
	io.Closer

	// Wait blocks until the count is positive, then decrements it.  This method returns
	// locker.ErrClosed if the semaphore is closed before or while waiting.
	Wait() error

	// WaitTimer is like Wait, but gives up when the given time channel becomes signaled.
	// In that case, locker.ErrTimeout is returned.
	WaitTimer(<-chan time.Time) error

	// WaitCtx is like Wait, but gives up when the context is canceled.  In that case,
	// ctx.Err() is returned.
	WaitCtx(context.Context) error

	// TryWait decrements the count if it is positive, returning true.  If the count is
	// zero or the semaphore is closed, this method returns false immediately.
	TryWait() bool

	// Post increments the count, waking one waiter if any are blocked.  If the count is
	// already at its maximum, locker.ErrOverflow is returned and the count is unchanged.
	Post() error

	// Value returns a snapshot of the current count.
	Value() int
}

// Options describes how to create a semaphore.  A nil Options is valid, and produces
// a semaphore with an initial count of zero.
type Options struct {
	// Count is the initial count.  It cannot be negative.
	Count int

	// Max is the largest count the semaphore may hold.  If unset, MaxCount is used.
	Max int

	// Logger is used to report creation failures and closure.  If unset, sallust.Default() is used.
	Logger *zap.Logger `json:"-" mapstructure:"-"`
}

func (o *Options) count() int {
	if o != nil {
		return o.Count
	}

	return 0
}

func (o *Options) max() int {
	if o != nil && o.Max != 0 {
		return o.Max
	}

	return MaxCount
}

func (o *Options) logger() *zap.Logger {
	if o != nil && o.Logger != nil {
		return o.Logger
	}

	return sallust.Default()
}

func (o *Options) validate() error {
	count, max := o.count(), o.max()
	switch {
	case max < 1 || max > MaxCount:
		return errInvalidMax
	case count < 0:
		return errNegativeCount
	case count > max:
		return errCountTooLarge
	default:
		return nil
	}
}

// New creates a semaphore from a set of options.  If the options are invalid, the returned
// error will be a *locker.InitError and no semaphore is returned.
func New(o *Options) (Interface, error) {
	logger := o.logger()
	if err := o.validate(); err != nil {
		logger.Error(
			"unable to create semaphore",
			zap.Int("count", o.count()),
			zap.Int("max", o.max()),
			zap.Error(err),
		)

		return nil, locker.NewInitError(primitive, err)
	}

	s := &semaphore{
		tokens: make(chan struct{}, o.max()),
		closed: make(chan struct{}),
		logger: logger,
	}

	for i := 0; i < o.count(); i++ {
		s.tokens <- struct{}{}
	}

	return s, nil
}

// NewCount is syntactic sugar for creating a semaphore with an initial count and
// otherwise default options.
func NewCount(count int) (Interface, error) {
	return New(&Options{Count: count})
}

// Do waits on s, invokes f, then posts to s regardless of how f exits.  If the wait fails,
// f is not invoked and the wait error is returned.
func Do(s Interface, f func() error) (err error) {
	if err = s.Wait(); err != nil {
		return
	}

	defer func() {
		err = multierr.Append(err, s.Post())
	}()

	err = f()
	return
}

// semaphore is the internal Interface implementation.  The count is the number of
// tokens buffered in the channel.
type semaphore struct {
	tokens chan struct{}

	state  int32
	closed chan struct{}
	logger *zap.Logger
}

func (s *semaphore) checkClosed() bool {
	return atomic.LoadInt32(&s.state) == stateClosed
}

func (s *semaphore) Close() error {
	if atomic.CompareAndSwapInt32(&s.state, stateOpen, stateClosed) {
		close(s.closed)
		s.logger.Debug("semaphore closed", zap.Int("value", len(s.tokens)))
		return nil
	}

	return locker.ErrClosed
}

func (s *semaphore) Wait() error {
	if s.checkClosed() {
		return locker.ErrClosed
	}

	select {
	case <-s.tokens:
		if s.checkClosed() {
			return locker.ErrClosed
		}

		return nil

	case <-s.closed:
		return locker.ErrClosed
	}
}

func (s *semaphore) WaitTimer(t <-chan time.Time) error {
	if s.checkClosed() {
		return locker.ErrClosed
	}

	select {
	case <-s.tokens:
		if s.checkClosed() {
			return locker.ErrClosed
		}

		return nil

	case <-t:
		return locker.ErrTimeout

	case <-s.closed:
		return locker.ErrClosed
	}
}

func (s *semaphore) WaitCtx(ctx context.Context) error {
	if s.checkClosed() {
		return locker.ErrClosed
	}

	select {
	case <-s.tokens:
		if s.checkClosed() {
			return locker.ErrClosed
		}

		return nil

	case <-ctx.Done():
		return ctx.Err()

	case <-s.closed:
		return locker.ErrClosed
	}
}

func (s *semaphore) TryWait() bool {
	if s.checkClosed() {
		return false
	}

	select {
	case <-s.tokens:
		return !s.checkClosed()

	default:
		return false
	}
}

func (s *semaphore) Post() error {
	if s.checkClosed() {
		return locker.ErrClosed
	}

	select {
	case s.tokens <- struct{}{}:
		return nil

	default:
		return locker.ErrOverflow
	}
}

func (s *semaphore) Value() int {
	return len(s.tokens)
}
