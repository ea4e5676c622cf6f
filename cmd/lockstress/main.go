// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"github.com/xmidt-org/locker/internal/stress"
	"go.uber.org/fx"
)

func newApp(arguments []string, output io.Writer) (*fx.App, error) {
	fs := newFlagSet()
	fs.SetOutput(output)
	if err := fs.Parse(arguments); err != nil {
		return nil, err
	}

	v, err := newViper(fs)
	if err != nil {
		return nil, err
	}

	app := fx.New(
		fx.Supply(v),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideRegistry,
			provideRunner,
		),
		stress.ProvideMetrics(),
		fx.WithLogger(provideEventLogger),
		fx.Invoke(serveMetrics, runScenarios),
	)

	return app, app.Err()
}

func lockstress(arguments []string, output io.Writer) int {
	app, err := newApp(arguments, output)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	} else if err != nil {
		fmt.Fprintf(output, "Unable to initialize %s: %s\n", applicationName, err)
		return 1
	}

	wait := app.Wait()
	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()

	if err := app.Start(startCtx); err != nil {
		fmt.Fprintf(output, "Unable to start %s: %s\n", applicationName, err)
		return 1
	}

	signal := <-wait
	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(output, "Unable to stop %s cleanly: %s\n", applicationName, err)
		return 1
	}

	return signal.ExitCode
}

func main() {
	os.Exit(lockstress(os.Args[1:], os.Stderr))
}
