package xapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Wait(t *testing.T) {
	rl := newRateLimiter(3, time.Hour)
	defer rl.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Wait(ctx), "token %d", i)
	}
	assert.Equal(t, 0, rl.Available())

	ctx4, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rl.Wait(ctx4), context.DeadlineExceeded)
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := newRateLimiter(2, 10*time.Millisecond)
	defer rl.Close()

	ctx := context.Background()
	require.NoError(t, rl.Wait(ctx))
	require.NoError(t, rl.Wait(ctx))

	ctx3, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	assert.NoError(t, rl.Wait(ctx3), "refill should release a token")
}

func TestRateLimiter_CloseIsIdempotent(t *testing.T) {
	rl := newRateLimiter(1, time.Hour)
	rl.Close()
	rl.Close()

	assert.ErrorIs(t, rl.Wait(context.Background()), errLimiterClosed)
}

func fastRetry(max int) RetryConfig {
	return RetryConfig{MaxRetries: max, InitialBackoff: time.Millisecond, MaxBackoff: 10 * time.Millisecond, BackoffMultiplier: 2}
}

func TestRetryWithBackoff(t *testing.T) {
	t.Run("success after rate limits", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), nil, fastRetry(4), func() error {
			calls++
			if calls < 3 {
				return &RateLimitError{}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := RetryWithBackoff(context.Background(), nil, fastRetry(4), func() error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausted", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), nil, fastRetry(2), func() error {
			calls++
			return &RateLimitError{}
		})
		var rle *RateLimitError
		assert.ErrorAs(t, err, &rle)
		assert.Contains(t, err.Error(), "max retries exceeded")
		assert.Equal(t, 3, calls)
	})

	t.Run("waits for reset beyond max backoff and retries", func(t *testing.T) {
		reset := time.Now().Add(150 * time.Millisecond)
		start := time.Now()
		calls := 0
		err := RetryWithBackoff(context.Background(), nil, fastRetry(0), func() error {
			calls++
			if time.Now().Before(reset) {
				return &RateLimitError{Reset: reset}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	})

	t.Run("reset in the past uses the retry budget", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), nil, fastRetry(1), func() error {
			calls++
			return &RateLimitError{Reset: time.Now().Add(-time.Minute)}
		})
		assert.Contains(t, err.Error(), "max retries exceeded")
		assert.Equal(t, 2, calls)
	})

	t.Run("context cancelled while waiting for reset", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := RetryWithBackoff(ctx, nil, fastRetry(0), func() error {
			return &RateLimitError{Reset: time.Now().Add(time.Hour)}
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("context cancelled while waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cfg := RetryConfig{MaxRetries: 3, InitialBackoff: time.Hour, MaxBackoff: time.Hour, BackoffMultiplier: 2}
		err := RetryWithBackoff(ctx, nil, cfg, func() error {
			cancel()
			return &RateLimitError{}
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseReset(t *testing.T) {
	assert.True(t, parseReset("").IsZero())
	assert.True(t, parseReset("abc").IsZero())
	assert.Equal(t, int64(1700000000), parseReset("1700000000").Unix())
}

func TestRateLimitError_Message(t *testing.T) {
	assert.Equal(t, "rate limited by X API (HTTP 429)", (&RateLimitError{}).Error())
	assert.Contains(t, (&RateLimitError{Reset: time.Unix(0, 0)}).Error(), "1970-01-01T00:00:00Z")
}
