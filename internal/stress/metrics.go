// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package stress

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/provider"
	"github.com/xmidt-org/locker/xmetrics"
	"go.uber.org/fx"
)

// Names for our metrics
const (
	SemaphoreResources = "semaphore_resources"
	SemaphoreFailures  = "semaphore_failures"
	MutexAcquisitions  = "mutex_acquisitions"
	MutexFailures      = "mutex_failures"
	CondSignals        = "cond_signals"
	CondTimeouts       = "cond_timeouts"
	ScenarioDuration   = "scenario_duration_seconds"
)

// Metrics returns the metrics relevant to this package.  To realize the metrics, use NewMeasures.
func Metrics() []xmetrics.Metric {
	return []xmetrics.Metric{
		{
			Name: SemaphoreResources,
			Type: xmetrics.GaugeType,
			Help: "The number of semaphore units currently held by workers",
		},
		{
			Name: SemaphoreFailures,
			Type: xmetrics.CounterType,
			Help: "The number of failed semaphore waits and posts",
		},
		{
			Name: MutexAcquisitions,
			Type: xmetrics.CounterType,
			Help: "The number of successful mutex acquisitions",
		},
		{
			Name: MutexFailures,
			Type: xmetrics.CounterType,
			Help: "The number of failed mutex locks and unlocks",
		},
		{
			Name: CondSignals,
			Type: xmetrics.CounterType,
			Help: "The number of condition variable signals and broadcasts",
		},
		{
			Name: CondTimeouts,
			Type: xmetrics.CounterType,
			Help: "The number of condition variable waits that timed out",
		},
		{
			Name:    ScenarioDuration,
			Type:    xmetrics.HistogramType,
			Help:    "The wall clock time taken by each scenario",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	}
}

// Measures is the set of realized metrics the scenarios report to
type Measures struct {
	SemaphoreResources metrics.Gauge
	SemaphoreFailures  metrics.Counter
	MutexAcquisitions  metrics.Counter
	MutexFailures      metrics.Counter
	CondSignals        metrics.Counter
	CondTimeouts       metrics.Counter
	ScenarioDuration   metrics.Histogram
}

// NewMeasures realizes the metrics returned by Metrics.  A nil provider discards everything.
func NewMeasures(p provider.Provider) *Measures {
	if p == nil {
		p = provider.NewDiscardProvider()
	}

	return &Measures{
		SemaphoreResources: p.NewGauge(SemaphoreResources),
		SemaphoreFailures:  p.NewCounter(SemaphoreFailures),
		MutexAcquisitions:  p.NewCounter(MutexAcquisitions),
		MutexFailures:      p.NewCounter(MutexFailures),
		CondSignals:        p.NewCounter(CondSignals),
		CondTimeouts:       p.NewCounter(CondTimeouts),
		ScenarioDuration:   p.NewHistogram(ScenarioDuration, 0),
	}
}

// MeasuresIn is an uber/fx parameter with the registry the measures are realized from
type MeasuresIn struct {
	fx.In
	Registry xmetrics.Registry
}

// ProvideMetrics provides the Measures for this package as uber/fx options.  The enclosing
// application must provide an xmetrics.Registry built with Metrics.
func ProvideMetrics() fx.Option {
	return fx.Provide(
		func(in MeasuresIn) *Measures {
			return NewMeasures(in.Registry)
		},
	)
}
