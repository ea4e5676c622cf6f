// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/xmidt-org/locker/internal/stress"
	"github.com/xmidt-org/sallust"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideRunner(c Config, m *stress.Measures) (*stress.Runner, error) {
	return stress.NewRunner(c.Stress, m, nil)
}

// RunIn is the set of components needed to execute the scenarios
type RunIn struct {
	fx.In
	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     Config
	Logger     *zap.Logger
	Runner     *stress.Runner
}

// runScenarios executes the scenarios in the background once the application starts.  The
// application is shut down when they complete, with a nonzero exit code if any failed.
func runScenarios(in RunIn) {
	var (
		base   = sallust.With(context.Background(), in.Logger)
		done   = make(chan struct{})
		linger = in.Config.Linger && len(in.Config.Address) > 0

		ctx    context.Context
		cancel context.CancelFunc
	)

	if in.Config.Duration > 0 {
		ctx, cancel = context.WithTimeout(base, in.Config.Duration)
	} else {
		ctx, cancel = context.WithCancel(base)
	}

	in.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				exitCode := 0
				results, err := in.Runner.Run(ctx)
				if err != nil {
					in.Logger.Error("stress run failed", zap.Error(err), zap.Int("scenarios", len(results)))
					exitCode = 1
				} else {
					in.Logger.Info("stress run complete", zap.Int("scenarios", len(results)))
				}

				if linger && exitCode == 0 {
					in.Logger.Info("lingering until signaled")
					return
				}

				if err := in.Shutdowner.Shutdown(fx.ExitCode(exitCode)); err != nil {
					in.Logger.Error("unable to shut down", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
