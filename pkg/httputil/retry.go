package httputil

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plantgate/pkg/errors"
	"github.com/matzehuels/plantgate/pkg/observability"
)

// Default retry settings for upstream calls.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
	DefaultMaxDelay   = 30 * time.Second
	DefaultMaxJitter  = 5 * time.Second
)

// Policy controls [RunWithRetry].
//
// The delay before retry n (0-indexed, n = 0 is the first retry after the
// original attempt failed) is
//
//	min(BaseDelay * 2^n, MaxDelay) + uniform[0, MaxJitter]
type Policy struct {
	MaxRetries int           // Retries after the first attempt; 3 gives 4 attempts in total
	BaseDelay  time.Duration // Backoff base; defaults to 1s when zero
	MaxDelay   time.Duration // Cap on the exponential part; defaults to 30s when zero
	MaxJitter  time.Duration // Upper bound of the additive jitter; zero disables jitter

	// Retryable reports whether a failure should be retried. Nil means
	// only upstream rate limiting (HTTP 429) is retried.
	Retryable func(error) bool

	// Logger receives one line per retry decision. Nil uses log.Default().
	Logger *log.Logger

	jitter func(max int64) int64
	sleep  func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy returns the policy used for every upstream call:
// 3 retries, 1s base, 30s cap, up to 5s of jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
		MaxJitter:  DefaultMaxJitter,
	}
}

// Backoff returns the exponential part of the delay before retry n.
func (p Policy) Backoff(n int) time.Duration {
	base, maxDelay := p.BaseDelay, p.MaxDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	d := base
	for i := 0; i < n && d < maxDelay; i++ {
		d *= 2
	}
	return min(d, maxDelay)
}

// Delay returns the full delay before retry n, jitter included.
func (p Policy) Delay(n int) time.Duration {
	d := p.Backoff(n)
	if p.MaxJitter > 0 {
		jitter := p.jitter
		if jitter == nil {
			jitter = rand.Int64N
		}
		d += time.Duration(jitter(int64(p.MaxJitter) + 1))
	}
	return d
}

// RunWithRetry calls op until it succeeds, fails with a non-retryable
// error, or MaxRetries retries have failed. Non-retryable errors are
// returned from the first attempt without any delay. When the budget is
// exhausted the last error is returned unchanged. A cancelled ctx aborts
// the wait between attempts and returns ctx.Err().
func RunWithRetry[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	retryable := p.Retryable
	if retryable == nil {
		retryable = errors.IsRateLimited
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}
	maxRetries := max(p.MaxRetries, 0)

	var zero T
	for attempt := 0; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if !retryable(err) {
			return zero, err
		}
		if attempt >= maxRetries {
			logger.Warn("retries exhausted", "attempts", attempt+1, "err", err)
			return zero, err
		}

		delay := p.Delay(attempt)
		logger.Info("rate limited, backing off", "retry", attempt+1, "of", maxRetries, "delay", delay.Round(time.Millisecond), "err", err)
		observability.Retry().OnRetry(ctx, attempt+1, delay, err)

		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}

// Retry is [RunWithRetry] for operations without a result.
func Retry(ctx context.Context, p Policy, fn func(context.Context) error) error {
	_, err := RunWithRetry(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RetryWithBackoff runs fn under [DefaultPolicy].
func RetryWithBackoff(ctx context.Context, fn func(context.Context) error) error {
	return Retry(ctx, DefaultPolicy(), fn)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
