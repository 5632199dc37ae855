// Package retry runs transfer calls with optional exponential backoff.
// Storage operations are single round trips unless the caller opts in,
// so the default is exactly one attempt.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Options configures backoff between attempts.
type Options struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// Default performs one attempt with no backoff.
var Default = Options{
	MaxAttempts:  1,
	InitialDelay: 300 * time.Millisecond,
	MaxDelay:     8 * time.Second,
	Multiplier:   2.0,
	Jitter:       true,
}

// IsRetryableFunc decides whether an error is worth another attempt.
type IsRetryableFunc func(error) bool

// Do runs fn until it succeeds, the error is not retryable, attempts
// run out, or ctx is done. The last error is returned.
func Do(ctx context.Context, opts Options, isRetryable IsRetryableFunc, fn func(context.Context) error) error {
	if opts.MaxAttempts <= 0 {
		opts = Default
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	backoff := opts.InitialDelay

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= opts.MaxAttempts {
			return err
		}
		if isRetryable != nil && !isRetryable(err) {
			return err
		}

		if err := sleep(ctx, delayFor(backoff, opts, rng)); err != nil {
			return err
		}
		backoff = nextBackoff(backoff, opts)
	}
}

// delayFor applies jitter (+/-20%) and the delay cap.
func delayFor(backoff time.Duration, opts Options, rng *rand.Rand) time.Duration {
	d := backoff
	if opts.Jitter {
		delta := float64(backoff) * 0.2
		j := (rng.Float64()*2 - 1) * delta
		d = time.Duration(math.Max(0, float64(backoff)+j))
	}
	if d > opts.MaxDelay {
		d = opts.MaxDelay
	}
	return d
}

// nextBackoff grows the base delay, guarding against overflow.
func nextBackoff(backoff time.Duration, opts Options) time.Duration {
	next := time.Duration(float64(backoff) * opts.Multiplier)
	if next < backoff {
		next = backoff
	}
	if next > opts.MaxDelay {
		next = opts.MaxDelay
	}
	return next
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
