package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAcquireRelease(t *testing.T) {
	l := NewLimiter(1)
	ctx := context.Background()

	release, err := l.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, l.InUse())

	release()
	assert.Equal(t, 0, l.InUse())
}

func TestLimiterBlocksAtCapacity(t *testing.T) {
	l := NewLimiter(1)
	ctx := context.Background()
	_, err := l.Acquire(ctx)
	require.NoError(t, err)

	timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(timeoutCtx)
	assert.Error(t, err)
}

func TestLimiterResize(t *testing.T) {
	l := NewLimiter(1)
	l.Resize(3)
	assert.Equal(t, 3, l.Capacity())

	ctx := context.Background()
	_, err := l.Acquire(ctx)
	require.NoError(t, err)
	_, err = l.Acquire(ctx)
	require.NoError(t, err)
	_, err = l.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, l.InUse())
}

func TestLimiterResizeDoesNotStrandInFlightToken(t *testing.T) {
	l := NewLimiter(1)
	ctx := context.Background()

	release, err := l.Acquire(ctx)
	require.NoError(t, err)

	l.Resize(2)

	released := make(chan struct{})
	go func() {
		release()
		close(released)
	}()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("release did not return after a concurrent resize")
	}
}
