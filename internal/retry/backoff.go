// Package retry provides exponential backoff for opening a device link.
// Pairing prompts, a module still booting, or a radio busy with inquiry
// all make the first connect attempt fail in ways a short wait fixes.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Schedule defaults, applied when a Backoff field is zero.
const (
	DefaultInitialDelay = 500 * time.Millisecond
	DefaultMaxDelay     = 4 * time.Second
	DefaultMultiplier   = 2.0
)

// Backoff is an exponential retry schedule with optional jitter.
type Backoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// MaxAttempts is the total number of tries including the first.
	// Zero retries until ctx ends.
	MaxAttempts int
	// Jitter spreads each wait by ±25%.
	Jitter bool

	// Retryable classifies failures.  An error it rejects is returned
	// at once.  Nil retries everything.
	Retryable func(error) bool
	// OnRetry is called before each wait with the failed attempt's
	// number and error and the delay about to be slept.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// ConnectBackoff returns the schedule used for device connects: a few
// quick attempts, since a user is waiting at the controls.
func ConnectBackoff(attempts int) *Backoff {
	return &Backoff{
		InitialDelay: DefaultInitialDelay,
		MaxDelay:     DefaultMaxDelay,
		Multiplier:   DefaultMultiplier,
		MaxAttempts:  attempts,
		Jitter:       true,
	}
}

// Do calls fn until it succeeds, fails with an error Retryable rejects,
// or the attempts or ctx run out.  attempt is 1-based.  A single-attempt
// schedule returns fn's error unwrapped.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	delay := orDefault(b.InitialDelay, DefaultInitialDelay)
	maxDelay := orDefault(b.MaxDelay, DefaultMaxDelay)
	multiplier := b.Multiplier
	if multiplier <= 1 {
		multiplier = DefaultMultiplier
	}

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		switch {
		case err == nil:
			return nil
		case b.Retryable != nil && !b.Retryable(err):
			return err
		case b.MaxAttempts == 1:
			return err
		case b.MaxAttempts > 0 && attempt >= b.MaxAttempts:
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}

		wait := delay
		if b.Jitter {
			wait = addJitter(delay)
		}
		if b.OnRetry != nil {
			b.OnRetry(attempt, err, wait)
		}
		if err := sleep(ctx, wait); err != nil {
			return fmt.Errorf("retry cancelled after %d attempts: %w", attempt, err)
		}

		delay = min(time.Duration(float64(delay)*multiplier), maxDelay)
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// addJitter adds ±25% randomisation to a duration.
func addJitter(d time.Duration) time.Duration {
	quarter := float64(d) * 0.25
	delta := (rand.Float64() * 2 * quarter) - quarter
	return time.Duration(math.Max(float64(d)+delta, float64(time.Millisecond)))
}
