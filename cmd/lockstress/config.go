// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/locker/internal/stress"
	"github.com/xmidt-org/locker/xmetrics"
	"github.com/xmidt-org/locker/xviper"
)

const (
	applicationName = "lockstress"

	AddressKey  = "address"
	DurationKey = "duration"
	LingerKey   = "linger"
	LogLevelKey = "loglevel"

	WorkersKey    = "workers"
	IterationsKey = "iterations"
	PermitsKey    = "permits"
	RoundsKey     = "rounds"
	TimeoutKey    = "timeout"
	HoldKey       = "hold"
)

// Config is the complete lockstress configuration, drawn from flags, the environment,
// and an optional configuration file.
type Config struct {
	// Address is the bind address for the /metrics endpoint.  If empty, no endpoint is served.
	Address string

	// Duration bounds the entire run.  Nonpositive values mean no bound.
	Duration time.Duration

	// Linger keeps the metrics endpoint up after the scenarios complete, until the process is signaled.
	Linger bool

	// LogLevel is any level zap understands, e.g. debug or error.  Defaults to info.
	LogLevel string

	Stress stress.Config `mapstructure:",squash"`

	Metrics xmetrics.Options
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	fs.StringP(xviper.DefaultFileFlag, "f", "", "the fully qualified configuration file")
	fs.String(AddressKey, "", "the bind address for the /metrics endpoint; empty disables the endpoint")
	fs.Duration(DurationKey, 0, "the maximum time the scenarios may run; zero means unbounded")
	fs.Bool(LingerKey, false, "keep serving metrics after the scenarios complete")
	fs.String(LogLevelKey, "info", "the log level")

	fs.Int(WorkersKey, stress.DefaultWorkers, "the number of contending goroutines")
	fs.Int(IterationsKey, stress.DefaultIterations, "the number of acquisitions per goroutine")
	fs.Int(PermitsKey, stress.DefaultPermits, "the semaphore count for the permits scenario")
	fs.Int(RoundsKey, stress.DefaultRounds, "the number of turns each player takes in the handoff scenario")
	fs.Duration(TimeoutKey, stress.DefaultTimeout, "the bound on each condition wait in the handoff scenario")
	fs.Duration(HoldKey, 0, "the time spent inside each critical section")

	return fs
}

func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v, err := xviper.New(xviper.StdOptions(applicationName, fs))
	if err != nil {
		return nil, err
	}

	xviper.ApplyDefaults(v, xviper.Defaults{
		"metrics.namespace": xmetrics.DefaultNamespace,
		"metrics.subsystem": applicationName,
	})

	if _, err := xviper.ReadInConfig(v); err != nil {
		return nil, err
	}

	return v, nil
}

func provideConfig(v *viper.Viper) (Config, error) {
	var c Config
	if err := xviper.Unmarshal(v, &c); err != nil {
		return Config{}, err
	}

	if err := c.Stress.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}
