package stress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/locker/xmetrics"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestMetrics(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	r, err := xmetrics.NewRegistry(&xmetrics.Options{DisableGoCollector: true, DisableProcessCollector: true}, Metrics)
	require.NoError(err)
	require.NotNil(r)

	m := NewMeasures(r)
	require.NotNil(m)
	assert.NotNil(m.SemaphoreResources)
	assert.NotNil(m.SemaphoreFailures)
	assert.NotNil(m.MutexAcquisitions)
	assert.NotNil(m.MutexFailures)
	assert.NotNil(m.CondSignals)
	assert.NotNil(m.CondTimeouts)
	assert.NotNil(m.ScenarioDuration)
}

func TestNewMeasuresNilProvider(t *testing.T) {
	m := NewMeasures(nil)
	require.NotNil(t, m)
	assert.NotPanics(t, func() {
		m.MutexAcquisitions.Add(1)
		m.SemaphoreResources.Add(-1)
		m.ScenarioDuration.Observe(1.5)
	})
}

func TestProvideMetrics(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		measures *Measures
	)

	r, err := xmetrics.NewRegistry(&xmetrics.Options{DisableGoCollector: true, DisableProcessCollector: true}, Metrics)
	require.NoError(err)

	app := fxtest.New(
		t,
		fx.NopLogger,
		fx.Provide(func() xmetrics.Registry { return r }),
		ProvideMetrics(),
		fx.Populate(&measures),
	)

	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(measures)
	measures.MutexAcquisitions.Add(1)

	families, err := r.Gather()
	require.NoError(err)

	found := false
	for _, mf := range families {
		if mf.GetName() == "locker_sync_"+MutexAcquisitions {
			found = true
			assert.Equal(1.0, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}

	assert.True(found)
}
