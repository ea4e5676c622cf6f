package xmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testifyrequire "github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testModule() []Metric {
	return []Metric{
		{
			Name: "counter",
			Type: CounterType,
			Help: "a test counter",
		},
		{
			Name: "gauge",
			Type: GaugeType,
			Help: "a test gauge",
		},
		{
			Name:    "histogram",
			Type:    HistogramType,
			Buckets: []float64{0.5, 1.0, 1.5},
		},
	}
}

func testRegistryAsGoKitProvider(t *testing.T) {
	var (
		require = require.New(t)

		o = &Options{
			Logger:                  zap.NewNop(),
			Namespace:               "test",
			Subsystem:               "basic",
			DisableProcessCollector: true,
		}
	)

	r, err := NewRegistry(o, testModule)
	require.NoError(err)
	require.NotNil(r)
	defer r.Stop()

	t.Run("NewCounter", func(t *testing.T) {
		assert := assert.New(t)
		preregistered := r.NewCounter("counter")
		assert.NotNil(preregistered)
		assert.Equal(preregistered, r.NewCounter("counter"))

		adHoc := r.NewCounter("new_counter")
		assert.NotNil(adHoc)
		assert.NotEqual(preregistered, adHoc)
		assert.Equal(adHoc, r.NewCounter("new_counter"))

		assert.Panics(func() { r.NewCounter("gauge") })
		assert.Panics(func() { r.NewCounter("histogram") })
	})

	t.Run("NewGauge", func(t *testing.T) {
		assert := assert.New(t)
		preregistered := r.NewGauge("gauge")
		assert.NotNil(preregistered)
		assert.Equal(preregistered, r.NewGauge("gauge"))

		adHoc := r.NewGauge("new_gauge")
		assert.NotNil(adHoc)
		assert.NotEqual(preregistered, adHoc)
		assert.Equal(adHoc, r.NewGauge("new_gauge"))

		assert.Panics(func() { r.NewGauge("counter") })
		assert.Panics(func() { r.NewGauge("histogram") })
	})

	t.Run("NewHistogram", func(t *testing.T) {
		assert := assert.New(t)
		preregistered := r.NewHistogram("histogram", 12)
		assert.NotNil(preregistered)
		assert.Equal(preregistered, r.NewHistogram("histogram", 34))

		adHoc := r.NewHistogram("new_histogram", 93)
		assert.NotNil(adHoc)
		assert.NotEqual(preregistered, adHoc)
		assert.Equal(adHoc, r.NewHistogram("new_histogram", -123))

		assert.Panics(func() { r.NewHistogram("counter", 12) })
		assert.Panics(func() { r.NewHistogram("gauge", 65344) })
	})

	t.Run("Gather", func(t *testing.T) {
		var (
			assert  = assert.New(t)
			require = testifyrequire.New(t)
		)

		r.NewCounter("counter").Add(2.0)
		families, err := r.Gather()
		require.NoError(err)

		var found bool
		for _, f := range families {
			if f.GetName() == "test_basic_counter" {
				found = true
				require.Len(f.GetMetric(), 1)
				assert.Equal(2.0, f.GetMetric()[0].GetCounter().GetValue())
			}
		}

		assert.True(found)
	})
}

func testRegistryEmptyMetricName(t *testing.T) {
	var (
		assert = assert.New(t)
		r, err = NewRegistry(nil, func() []Metric {
			return []Metric{{Type: CounterType}}
		})
	)

	assert.Nil(r)
	assert.Error(err)
}

func testRegistryInvalidType(t *testing.T) {
	var (
		assert = assert.New(t)
		r, err = NewRegistry(nil, func() []Metric {
			return []Metric{{Name: "bad", Type: "huh?"}}
		})
	)

	assert.Nil(r)
	assert.Error(err)
}

func testRegistryDuplicate(t *testing.T) {
	var (
		assert = assert.New(t)
		r, err = NewRegistry(&Options{Logger: zap.NewNop()}, testModule, testModule)
	)

	assert.Nil(r)
	assert.Error(err)
}

func TestRegistry(t *testing.T) {
	t.Run("AsGoKitProvider", testRegistryAsGoKitProvider)
	t.Run("EmptyMetricName", testRegistryEmptyMetricName)
	t.Run("InvalidType", testRegistryInvalidType)
	t.Run("Duplicate", testRegistryDuplicate)
}
