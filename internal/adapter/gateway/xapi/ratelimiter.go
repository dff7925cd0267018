package xapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var errLimiterClosed = errors.New("rate limiter closed")

// RateLimiter is a token bucket refilled to capacity once per interval
type RateLimiter struct {
	capacity int
	interval time.Duration
	tokens   chan struct{}

	mu sync.Mutex

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a limiter allowing rpm requests per minute.
// Close must be called to stop the refill goroutine.
func NewRateLimiter(rpm int) *RateLimiter {
	return newRateLimiter(rpm, time.Minute)
}

func newRateLimiter(capacity int, interval time.Duration) *RateLimiter {
	if capacity <= 0 {
		capacity = 15
	}

	rl := &RateLimiter{
		capacity: capacity,
		interval: interval,
		tokens:   make(chan struct{}, capacity),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for i := 0; i < capacity; i++ {
		rl.tokens <- struct{}{}
	}

	go rl.refillLoop()
	return rl
}

// Wait blocks until a token is available or ctx is done
func (rl *RateLimiter) Wait(ctx context.Context) error {
	select {
	case <-rl.stop:
		return errLimiterClosed
	default:
	}

	select {
	case <-rl.tokens:
		return nil
	case <-rl.stop:
		return errLimiterClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Available returns the number of tokens left in the current interval
func (rl *RateLimiter) Available() int {
	return len(rl.tokens)
}

// Close stops the refill goroutine and waits for it to exit
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
	<-rl.done
}

func (rl *RateLimiter) refillLoop() {
	defer close(rl.done)

	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.refill()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) refill() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for i := len(rl.tokens); i < rl.capacity; i++ {
		select {
		case rl.tokens <- struct{}{}:
		default:
		}
	}
}

// RetryConfig holds retry configuration for rate limited calls
type RetryConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        4,
		InitialBackoff:    2 * time.Second,
		MaxBackoff:        60 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// RateLimitError is returned for HTTP 429. Reset is the time the window
// reopens according to x-rate-limit-reset, zero when absent.
type RateLimitError struct {
	Reset time.Time
}

func (e *RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return "rate limited by X API (HTTP 429)"
	}
	return fmt.Sprintf("rate limited by X API (HTTP 429), resets at %s", e.Reset.UTC().Format(time.RFC3339))
}

// RetryWithBackoff runs fn, retrying only on *RateLimitError. When the
// response carries a future Reset the call sleeps until the window reopens;
// those waits are bounded by ctx alone and do not count against MaxRetries.
// Without a usable Reset the wait is an exponential backoff capped at
// MaxBackoff, and at most MaxRetries such retries are made.
func RetryWithBackoff(ctx context.Context, rl *RateLimiter, config RetryConfig, fn func() error) error {
	backoff := config.InitialBackoff
	retries := 0

	for {
		if rl != nil {
			if err := rl.Wait(ctx); err != nil {
				return fmt.Errorf("rate limit wait failed: %w", err)
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		var rle *RateLimitError
		if !errors.As(err, &rle) {
			return err
		}

		wait := time.Until(rle.Reset)
		if rle.Reset.IsZero() || wait <= 0 {
			if retries >= config.MaxRetries {
				return fmt.Errorf("max retries exceeded: %w", err)
			}
			retries++
			wait = backoff
			backoff = time.Duration(float64(backoff) * config.BackoffMultiplier)
			if config.MaxBackoff > 0 && backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}

		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
