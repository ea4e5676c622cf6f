package stress

import (
	"context"
	"errors"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/locker/xmetrics"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig() Config {
	return Config{
		Workers:    4,
		Iterations: 50,
		Permits:    2,
		Rounds:     25,
		Timeout:    time.Second,
	}
}

// newTestRunner produces a Runner backed by a real registry along with a context carrying an
// observed logger
func newTestRunner(t *testing.T, c Config) (*Runner, xmetrics.Registry, context.Context, *observer.ObservedLogs) {
	registry, err := xmetrics.NewRegistry(
		&xmetrics.Options{DisableGoCollector: true, DisableProcessCollector: true},
		Metrics,
	)

	require.NoError(t, err)

	runner, err := NewRunner(c, NewMeasures(registry), nil)
	require.NoError(t, err)
	require.NotNil(t, runner)

	core, logs := observer.New(zap.DebugLevel)
	ctx := sallust.With(context.Background(), zap.New(core))
	return runner, registry, ctx, logs
}

// metricValue returns the value of the single, unlabeled sample for the given metric
func metricValue(t *testing.T, registry xmetrics.Registry, name string) float64 {
	families, err := registry.Gather()
	require.NoError(t, err)

	fullName := xmetrics.DefaultNamespace + "_" + xmetrics.DefaultSubsystem + "_" + name
	for _, mf := range families {
		if mf.GetName() != fullName {
			continue
		}

		require.Len(t, mf.GetMetric(), 1)
		m := mf.GetMetric()[0]
		switch mf.GetType() {
		case dto.MetricType_COUNTER:
			return m.GetCounter().GetValue()
		case dto.MetricType_GAUGE:
			return m.GetGauge().GetValue()
		case dto.MetricType_HISTOGRAM:
			return float64(m.GetHistogram().GetSampleCount())
		}
	}

	return 0
}

func TestNewRunner(t *testing.T) {
	t.Run("Invalid", func(t *testing.T) {
		c := testConfig()
		c.Workers = 0

		r, err := NewRunner(c, nil, nil)
		assert.Nil(t, r)
		assert.Equal(t, errInvalidWorkers, err)
	})

	t.Run("Defaults", func(t *testing.T) {
		r, err := NewRunner(testConfig(), nil, nil)
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.NotNil(t, r.measures)
		assert.NotNil(t, r.clock)
	})
}

func TestPermits(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		c                           = testConfig()
		runner, registry, ctx, logs = newTestRunner(t, c)
	)

	result, err := runner.Permits(ctx)
	require.NoError(err)

	assert.Equal(PermitsScenario, result.Scenario)
	assert.Equal(c.Workers*c.Iterations, result.Operations)
	assert.True(result.MaxConcurrent >= 1)
	assert.True(result.MaxConcurrent <= c.Permits)
	assert.Zero(result.Timeouts)

	// every unit taken was returned
	assert.Zero(metricValue(t, registry, SemaphoreResources))
	assert.Zero(metricValue(t, registry, SemaphoreFailures))
	assert.Equal(1.0, metricValue(t, registry, ScenarioDuration))
	assert.Equal(1, logs.FilterMessage("scenario complete").FilterField(zap.String("scenario", PermitsScenario)).Len())
}

func TestPermitsWithHold(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		c = Config{
			Workers:    6,
			Iterations: 3,
			Permits:    2,
			Rounds:     1,
			Timeout:    time.Second,
			Hold:       5 * time.Millisecond,
		}

		runner, _, ctx, _ = newTestRunner(t, c)
	)

	result, err := runner.Permits(ctx)
	require.NoError(err)
	assert.Equal(18, result.Operations)

	assert.True(result.MaxConcurrent >= 1)
	assert.True(result.MaxConcurrent <= c.Permits)
}

func TestPermitsCanceled(t *testing.T) {
	var (
		assert = assert.New(t)

		c                           = testConfig()
		runner, registry, ctx, logs = newTestRunner(t, c)
	)

	ctx, cancel := context.WithCancel(ctx)
	cancel()

	_, err := runner.Permits(ctx)
	assert.True(errors.Is(err, context.Canceled))
	assert.Equal(1, logs.FilterMessage("scenario failed").Len())
	assert.True(metricValue(t, registry, SemaphoreFailures) >= 1.0)
}

func TestExclusion(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		c                           = testConfig()
		runner, registry, ctx, logs = newTestRunner(t, c)
	)

	result, err := runner.Exclusion(ctx)
	require.NoError(err)

	assert.Equal(ExclusionScenario, result.Scenario)
	assert.Equal(c.Workers*c.Iterations, result.Operations)
	assert.Equal(1, result.MaxConcurrent)
	assert.Equal(float64(c.Workers*c.Iterations), metricValue(t, registry, MutexAcquisitions))
	assert.Zero(metricValue(t, registry, MutexFailures))
	assert.Equal(1, logs.FilterMessage("scenario complete").Len())
}

func TestExclusionCanceled(t *testing.T) {
	var (
		c                 = testConfig()
		runner, _, ctx, _ = newTestRunner(t, c)
	)

	ctx, cancel := context.WithCancel(ctx)
	cancel()

	result, err := runner.Exclusion(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, result.Operations)
}

func TestHandoff(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		c                           = testConfig()
		runner, registry, ctx, logs = newTestRunner(t, c)
	)

	result, err := runner.Handoff(ctx)
	require.NoError(err)

	assert.Equal(HandoffScenario, result.Scenario)
	assert.Equal(2*c.Rounds, result.Operations)
	assert.Zero(result.Timeouts)
	assert.Equal(float64(2*c.Rounds), metricValue(t, registry, CondSignals))
	assert.Zero(metricValue(t, registry, CondTimeouts))
	assert.Equal(1, logs.FilterMessage("scenario complete").Len())
}

func TestHandoffTimeout(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		c = testConfig()
	)

	c.Timeout = 20 * time.Millisecond
	runner, registry, ctx, _ := newTestRunner(t, c)

	h := runner.newHandoff(zap.NewNop())
	defer h.Close()

	// player 1 waits for a turn that player 0 never hands over
	err := h.play(ctx, 1)
	require.Error(err)
	assert.Equal(1, h.timeouts)
	assert.Zero(h.passes)
	assert.Equal(1.0, metricValue(t, registry, CondTimeouts))

	// the timed out player released the lock
	assert.NoError(h.m.Lock())
	assert.NoError(h.m.Unlock())
}

func TestHandoffSinglePlayer(t *testing.T) {
	var (
		assert = assert.New(t)

		c = testConfig()
	)

	c.Rounds = 1
	runner, _, ctx, _ := newTestRunner(t, c)

	h := runner.newHandoff(zap.NewNop())
	defer h.Close()

	// player 0 holds the first turn and never has to wait
	assert.NoError(h.play(ctx, 0))
	assert.Equal(1, h.passes)
	assert.Equal(1, h.turn)
	assert.Zero(h.timeouts)
}

func TestRun(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		c                           = testConfig()
		runner, registry, ctx, logs = newTestRunner(t, c)
	)

	results, err := runner.Run(ctx)
	require.NoError(err)
	require.Len(results, 3)

	assert.Equal(PermitsScenario, results[0].Scenario)
	assert.Equal(ExclusionScenario, results[1].Scenario)
	assert.Equal(HandoffScenario, results[2].Scenario)
	assert.Equal(3.0, metricValue(t, registry, ScenarioDuration))
	assert.Equal(3, logs.FilterMessage("scenario complete").Len())
}

func TestRunCanceled(t *testing.T) {
	var (
		assert = assert.New(t)

		c                 = testConfig()
		runner, _, ctx, _ = newTestRunner(t, c)
	)

	ctx, cancel := context.WithCancel(ctx)
	cancel()

	results, err := runner.Run(ctx)
	assert.Len(results, 3)
	assert.True(errors.Is(err, context.Canceled))
}
