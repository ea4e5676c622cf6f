// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package stress

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/xmidt-org/locker"
	"github.com/xmidt-org/locker/clock"
	"github.com/xmidt-org/locker/cond"
	"github.com/xmidt-org/locker/mutex"
	"github.com/xmidt-org/locker/semaphore"
	"github.com/xmidt-org/sallust"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Scenario names, as reported in Result.Scenario
const (
	PermitsScenario   = "permits"
	ExclusionScenario = "exclusion"
	HandoffScenario   = "handoff"
)

// ErrInvariantViolated is wrapped by any error reporting that a primitive allowed a state its
// contract forbids.
var ErrInvariantViolated = errors.New("invariant violated")

// Result describes a single completed scenario.
type Result struct {
	Scenario string

	// Operations is the number of critical sections or turns that completed.
	Operations int

	// MaxConcurrent is the largest number of workers observed inside a critical section at once.
	MaxConcurrent int

	// Timeouts is the number of condition waits that expired.
	Timeouts int

	Elapsed time.Duration
}

// Runner executes the stress scenarios for a given Config.
type Runner struct {
	config   Config
	measures *Measures
	clock    clock.Interface
}

// NewRunner validates the configuration and produces a Runner.  A nil Measures discards all
// metrics, and a nil clock uses the system clock.
func NewRunner(c Config, m *Measures, ck clock.Interface) (*Runner, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if m == nil {
		m = NewMeasures(nil)
	}

	if ck == nil {
		ck = clock.System()
	}

	return &Runner{
		config:   c,
		measures: m,
		clock:    ck,
	}, nil
}

func (r *Runner) hold() {
	if r.config.Hold > 0 {
		r.clock.Sleep(r.config.Hold)
	}
}

// observe records the elapsed time of a scenario and logs its outcome
func (r *Runner) observe(ctx context.Context, result *Result, start time.Time, err error) {
	result.Elapsed = r.clock.Now().Sub(start)
	r.measures.ScenarioDuration.Observe(result.Elapsed.Seconds())

	logger := sallust.Get(ctx).With(zap.String("scenario", result.Scenario))
	if err != nil {
		logger.Error("scenario failed", zap.Error(err), zap.Int("operations", result.Operations))
		return
	}

	logger.Info(
		"scenario complete",
		zap.Int("operations", result.Operations),
		zap.Int("maxConcurrent", result.MaxConcurrent),
		zap.Int("timeouts", result.Timeouts),
		zap.Duration("elapsed", result.Elapsed),
	)
}

// Permits has Workers goroutines repeatedly acquire a semaphore initialized to Permits.  The
// number of goroutines simultaneously holding a unit must never exceed Permits.
func (r *Runner) Permits(ctx context.Context) (result Result, err error) {
	result.Scenario = PermitsScenario
	start := r.clock.Now()
	defer func() { r.observe(ctx, &result, start, err) }()

	s, err := semaphore.New(&semaphore.Options{
		Count:  r.config.Permits,
		Max:    r.config.Permits,
		Logger: sallust.Get(ctx),
	})

	if err != nil {
		return
	}

	defer s.Close()
	s = semaphore.Instrument(
		s,
		semaphore.WithResources(r.measures.SemaphoreResources),
		semaphore.WithFailures(r.measures.SemaphoreFailures),
	)

	var (
		active     int32
		maxActive  int32
		operations int64

		g, gctx = errgroup.WithContext(ctx)
	)

	for w := 0; w < r.config.Workers; w++ {
		g.Go(func() error {
			for i := 0; i < r.config.Iterations; i++ {
				if err := s.WaitCtx(gctx); err != nil {
					return err
				}

				n := atomic.AddInt32(&active, 1)
				for {
					m := atomic.LoadInt32(&maxActive)
					if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
						break
					}
				}

				r.hold()
				atomic.AddInt32(&active, -1)
				atomic.AddInt64(&operations, 1)
				if err := s.Post(); err != nil {
					return err
				}
			}

			return nil
		})
	}

	err = g.Wait()
	result.Operations = int(atomic.LoadInt64(&operations))
	result.MaxConcurrent = int(atomic.LoadInt32(&maxActive))
	if err == nil && result.MaxConcurrent > r.config.Permits {
		err = fmt.Errorf("%w: %d concurrent holders of %d permits", ErrInvariantViolated, result.MaxConcurrent, r.config.Permits)
	}

	return
}

// Exclusion has Workers goroutines each increment an unguarded counter Iterations times while
// holding a mutex.  No increment may be lost, and no two goroutines may be inside at once.
func (r *Runner) Exclusion(ctx context.Context) (result Result, err error) {
	result.Scenario = ExclusionScenario
	start := r.clock.Now()
	defer func() { r.observe(ctx, &result, start, err) }()

	m := mutex.New(&mutex.Options{Logger: sallust.Get(ctx)})
	defer m.Close()
	m = mutex.Instrument(
		m,
		mutex.WithAcquisitions(r.measures.MutexAcquisitions),
		mutex.WithFailures(r.measures.MutexFailures),
	)

	var (
		counter   int
		inside    int
		maxInside int

		g, gctx = errgroup.WithContext(ctx)
	)

	for w := 0; w < r.config.Workers; w++ {
		g.Go(func() error {
			for i := 0; i < r.config.Iterations; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}

				err := m.Do(func() error {
					inside++
					if inside > maxInside {
						maxInside = inside
					}

					r.hold()
					counter++
					inside--
					return nil
				})

				if err != nil {
					return err
				}
			}

			return nil
		})
	}

	err = g.Wait()

	// g.Wait establishes a happens-before with every worker, so the counters are safe to read
	result.Operations = counter
	result.MaxConcurrent = maxInside
	if err != nil {
		return
	}

	if expected := r.config.Workers * r.config.Iterations; counter != expected || maxInside > 1 {
		err = fmt.Errorf("%w: counter=%d expected=%d maxInside=%d", ErrInvariantViolated, counter, expected, maxInside)
	}

	return
}

// handoff is the state shared by the two players of the Handoff scenario
type handoff struct {
	runner *Runner
	m      mutex.Interface
	c      cond.Interface

	// guarded by m
	turn     int
	passes   int
	timeouts int
}

func (r *Runner) newHandoff(logger *zap.Logger) *handoff {
	h := &handoff{
		runner: r,
		m:      mutex.New(&mutex.Options{Logger: logger}),
		c:      cond.New(&cond.Options{Clock: r.clock, Logger: logger}),
	}

	h.m = mutex.Instrument(
		h.m,
		mutex.WithAcquisitions(r.measures.MutexAcquisitions),
		mutex.WithFailures(r.measures.MutexFailures),
	)

	h.c = cond.Instrument(
		h.c,
		cond.WithSignals(r.measures.CondSignals),
		cond.WithTimeouts(r.measures.CondTimeouts),
	)

	return h
}

func (h *handoff) Close() error {
	return multierr.Append(h.c.Close(), h.m.Close())
}

// play takes Rounds turns as the given player, waiting on the condition for the other player
// to hand over each turn
func (h *handoff) play(ctx context.Context, player int) error {
	for i := 0; i < h.runner.config.Rounds; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := h.m.Lock(); err != nil {
			return err
		}

		for h.turn != player {
			err := h.c.TimedWait(h.m.Handle(), h.runner.clock.Now().Add(h.runner.config.Timeout))
			if errors.Is(err, locker.ErrTimeout) {
				h.timeouts++
				return multierr.Append(
					fmt.Errorf("player %d timed out waiting for round %d", player, i),
					h.m.Unlock(),
				)
			} else if err != nil {
				return multierr.Append(err, h.m.Unlock())
			}
		}

		h.runner.hold()
		h.turn = 1 - player
		h.passes++
		if err := h.c.Signal(); err != nil {
			return multierr.Append(err, h.m.Unlock())
		}

		if err := h.m.Unlock(); err != nil {
			return err
		}
	}

	return nil
}

// Handoff has two players alternate turns Rounds times each, using a mutex and a condition
// variable.  Each wait for a turn is bounded by Timeout.
func (r *Runner) Handoff(ctx context.Context) (result Result, err error) {
	result.Scenario = HandoffScenario
	start := r.clock.Now()
	defer func() { r.observe(ctx, &result, start, err) }()

	h := r.newHandoff(sallust.Get(ctx))
	defer h.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.play(gctx, 0) })
	g.Go(func() error { return h.play(gctx, 1) })
	err = g.Wait()

	result.Operations = h.passes
	result.Timeouts = h.timeouts
	result.MaxConcurrent = 1
	if err == nil && h.passes != 2*r.config.Rounds {
		err = fmt.Errorf("%w: passes=%d expected=%d", ErrInvariantViolated, h.passes, 2*r.config.Rounds)
	}

	return
}

// Run executes every scenario in turn.  All scenarios run even if an earlier one fails, and the
// errors are combined.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	var (
		results []Result
		errs    error
	)

	for _, scenario := range []func(context.Context) (Result, error){r.Permits, r.Exclusion, r.Handoff} {
		result, err := scenario(ctx)
		results = append(results, result)
		errs = multierr.Append(errs, err)
	}

	return results, errs
}
