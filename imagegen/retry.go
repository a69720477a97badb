package imagegen

import (
	"context"
	"time"
)

// SleepFunc pauses for the given duration or until the context is
// cancelled. Tests inject a fake to avoid real waits.
type SleepFunc func(ctx context.Context, d time.Duration) error

// DefaultSleep is the production SleepFunc backed by time.NewTimer.
func DefaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryPolicy controls how many attempts each provider gets and how long
// to back off between them. Rate-limited failures use a slower schedule
// than server and network failures.
type RetryPolicy struct {
	MaxAttempts      int
	BaseBackoff      []time.Duration
	RateLimitBackoff []time.Duration
	Sleep            SleepFunc
}

// DefaultRetryPolicy returns the standard policy: 3 attempts per provider,
// 1s/2s/4s backoff, stretched to 5s/10s/20s when rate limited.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:      3,
		BaseBackoff:      []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		RateLimitBackoff: []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second},
		Sleep:            DefaultSleep,
	}
}

// Backoff returns the wait before retry number `attempt` (1-based: the
// wait after the first failure is attempt 1). Attempts beyond the schedule
// reuse its last entry.
func (p RetryPolicy) Backoff(class ErrorClass, attempt int) time.Duration {
	schedule := p.BaseBackoff
	if class == ErrorClassRateLimited {
		schedule = p.RateLimitBackoff
	}
	if len(schedule) == 0 {
		return 0
	}
	idx := attempt - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(schedule) {
		idx = len(schedule) - 1
	}
	return schedule[idx]
}

// wait sleeps for the backoff, honoring cancellation.
func (p RetryPolicy) wait(ctx context.Context, class ErrorClass, attempt int) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = DefaultSleep
	}
	return sleep(ctx, p.Backoff(class, attempt))
}
