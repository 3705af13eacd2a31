package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterExhaustsCapacity(t *testing.T) {
	limiter := NewRateLimiter(3, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, limiter.allow("10.0.0.1"))

	// Other clients have their own bucket.
	assert.True(t, limiter.allow("10.0.0.2"))
}

func TestRateLimiterRefills(t *testing.T) {
	limiter := NewRateLimiter(1, 60)

	require.True(t, limiter.allow("10.0.0.1"))
	require.False(t, limiter.allow("10.0.0.1"))

	// Backdate the bucket as if a minute had passed.
	limiter.mu.Lock()
	limiter.buckets["10.0.0.1"].last = time.Now().Add(-time.Minute)
	limiter.mu.Unlock()

	assert.True(t, limiter.allow("10.0.0.1"))
}

func TestRateLimiterSweepsIdleBuckets(t *testing.T) {
	limiter := NewRateLimiter(5, 5)

	require.True(t, limiter.allow("10.0.0.1"))
	require.True(t, limiter.allow("10.0.0.2"))

	limiter.mu.Lock()
	limiter.buckets["10.0.0.1"].last = time.Now().Add(-bucketIdleTTL - time.Minute)
	limiter.lastSweep = time.Now().Add(-sweepInterval - time.Second)
	limiter.mu.Unlock()

	require.True(t, limiter.allow("10.0.0.3"))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.buckets, "10.0.0.1", "idle bucket must be dropped")
	assert.Contains(t, limiter.buckets, "10.0.0.2")
	assert.Contains(t, limiter.buckets, "10.0.0.3")
}

func TestRateLimiterSweepIsThrottled(t *testing.T) {
	limiter := NewRateLimiter(5, 5)

	require.True(t, limiter.allow("10.0.0.1"))

	// The sweep just ran, so even a stale bucket survives the next call.
	limiter.mu.Lock()
	limiter.buckets["10.0.0.1"].last = time.Now().Add(-bucketIdleTTL - time.Minute)
	limiter.lastSweep = time.Now()
	limiter.mu.Unlock()

	require.True(t, limiter.allow("10.0.0.2"))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Contains(t, limiter.buckets, "10.0.0.1")
}
