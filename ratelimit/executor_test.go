package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_Success(t *testing.T) {
	e, err := NewExecutor("test", 0, 3, 10*time.Millisecond)
	require.NoError(t, err)

	attempts := 0
	err = e.Execute(context.Background(), func() error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestExecute_EventualSuccess(t *testing.T) {
	e, err := NewExecutor("test", 0, 5, 5*time.Millisecond)
	require.NoError(t, err)

	attempts := 0
	err = e.Execute(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestExecute_AllAttemptsFail(t *testing.T) {
	e, err := NewExecutor("catalog", 0, 3, 5*time.Millisecond)
	require.NoError(t, err)

	attempts := 0
	transient := errors.New("connection reset")
	err = e.Execute(context.Background(), func() error {
		attempts++
		return transient
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, transient, "should wrap the original error")
	assert.Contains(t, err.Error(), "catalog", "failure should carry the call class label")
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestExecute_PermanentSkipsRetry(t *testing.T) {
	e, err := NewExecutor("store", 0, 5, 5*time.Millisecond)
	require.NoError(t, err)

	attempts := 0
	conflict := errors.New("identity already exists")
	err = e.Execute(context.Background(), func() error {
		attempts++
		return Permanent(conflict)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, conflict)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, attempts, "permanent failure must not consume retry budget")
}

func TestExecute_ContextCanceled(t *testing.T) {
	e, err := NewExecutor("test", 0, 5, 50*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err = e.Execute(ctx, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("temporary error")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestExecute_MinimumSpacing(t *testing.T) {
	const (
		calls    = 100
		interval = 2 * time.Millisecond
	)

	e, err := NewExecutor("spaced", interval, 1, 0)
	require.NoError(t, err)

	var timestamps []time.Time
	for i := 0; i < calls; i++ {
		err := e.Execute(context.Background(), func() error {
			timestamps = append(timestamps, time.Now())
			return nil
		})
		require.NoError(t, err)
	}

	require.Len(t, timestamps, calls)
	for i := 1; i < calls; i++ {
		spacing := timestamps[i].Sub(timestamps[i-1])
		// Small tolerance for timer resolution
		assert.GreaterOrEqual(t, spacing, interval-time.Millisecond,
			"inter-call spacing fell below the configured minimum at call %d", i)
	}
}

func TestNewExecutor_InvalidMaxAttempts(t *testing.T) {
	_, err := NewExecutor("test", 0, 0, time.Second)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	assert.False(t, IsPermanent(nil))
}
