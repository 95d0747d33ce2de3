package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitSpacesActions(t *testing.T) {
	limiter := New(20*time.Millisecond, 20*time.Millisecond)

	require.NoError(t, limiter.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestWaitZeroDelayDoesNotBlock(t *testing.T) {
	limiter := New(0, 0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitCanceledContext(t *testing.T) {
	limiter := New(time.Minute, time.Minute)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, limiter.Wait(ctx))
}
