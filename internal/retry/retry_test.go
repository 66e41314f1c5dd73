package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoStopsAfterMaxAttempts(t *testing.T) {
	attempts := 0
	errBoom := errors.New("boom")

	err := Do(context.Background(), 3, time.Millisecond, func(ctx context.Context) error {
		attempts++
		return errBoom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, attempts)
}

func TestDoSucceedsMidway(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), 5, time.Millisecond, func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestDoPermanentShortCircuits(t *testing.T) {
	attempts := 0
	errBad := errors.New("bad image")

	err := Do(context.Background(), 5, time.Millisecond, func(ctx context.Context) error {
		attempts++
		return Permanent(errBad)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errBad)
	assert.Equal(t, 1, attempts)
}

func TestDoHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, 3, time.Millisecond, func(ctx context.Context) error {
		return errors.New("should not matter")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
