// Package lifecycle implements bounded-concurrency, fault-isolated dispatch
// of trigger snapshots taken from the registry package.
package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
)

// Limiter is a cooperative semaphore bounding how many dispatch tasks may be
// in their execution critical section at once. It never busy-spins: callers
// block on a channel select, not a poll loop.
type Limiter struct {
	mu       sync.RWMutex
	tokens   chan struct{}
	capacity int
	inUse    atomic.Int64
}

// NewLimiter creates a Limiter admitting at most capacity concurrent
// dispatch tasks. A non-positive capacity is treated as 1.
func NewLimiter(capacity int) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	return &Limiter{
		tokens:   make(chan struct{}, capacity),
		capacity: capacity,
	}
}

// Acquire blocks until a token is available or ctx is done. The returned
// release func must be called exactly once to return the token; it releases
// into the same channel generation it acquired from, so a concurrent Resize
// never strands a token in a channel nobody is reading from.
func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	l.mu.RLock()
	tokens := l.tokens
	l.mu.RUnlock()

	select {
	case tokens <- struct{}{}:
		l.inUse.Add(1)
		return func() {
			l.inUse.Add(-1)
			<-tokens
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// InUse reports how many dispatch tasks currently hold a token.
func (l *Limiter) InUse() int {
	return int(l.inUse.Load())
}

// Capacity reports the configured concurrency ceiling.
func (l *Limiter) Capacity() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.capacity
}

// Resize changes the concurrency ceiling, used by config hot-reload. Tasks
// already holding a token from the old channel release into that same
// channel via their bound release func; new Acquire calls see the resized
// channel immediately. The old channel is simply dropped once its holders
// finish, so InUse briefly reflects both generations during a resize but
// never blocks or leaks a token.
func (l *Limiter) Resize(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens = make(chan struct{}, capacity)
	l.capacity = capacity
}
