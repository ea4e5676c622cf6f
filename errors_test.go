package locker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitError(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		cause = errors.New("expected")
		err   = NewInitError("semaphore", cause)
	)

	require.Error(err)
	assert.Equal("unable to initialize semaphore: expected", err.Error())
	assert.True(errors.Is(err, cause))
	assert.True(IsInitError(err))
	assert.True(IsInitError(fmt.Errorf("wrapped: %w", err)))

	var ie *InitError
	require.True(errors.As(err, &ie))
	assert.Equal("semaphore", ie.Primitive)
	assert.Equal(cause, ie.Err)
}

func TestIsInitError(t *testing.T) {
	for _, err := range []error{nil, ErrClosed, ErrTimeout, ErrNotLocked, ErrOverflow} {
		t.Run(fmt.Sprint(err), func(t *testing.T) {
			assert.False(t, IsInitError(err))
		})
	}
}
