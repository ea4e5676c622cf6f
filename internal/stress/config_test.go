package stress

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	testData := []struct {
		mutate   func(*Config)
		expected error
	}{
		{func(c *Config) { c.Workers = 0 }, errInvalidWorkers},
		{func(c *Config) { c.Iterations = -1 }, errInvalidIterations},
		{func(c *Config) { c.Permits = 0 }, errInvalidPermits},
		{func(c *Config) { c.Rounds = 0 }, errInvalidRounds},
		{func(c *Config) { c.Timeout = 0 }, errInvalidTimeout},
		{func(c *Config) { c.Hold = -time.Second }, errInvalidHold},
		{func(c *Config) { c.Hold = time.Millisecond }, nil},
	}

	for i, record := range testData {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			c := DefaultConfig()
			record.mutate(&c)
			assert.Equal(t, record.expected, c.Validate())
		})
	}
}
