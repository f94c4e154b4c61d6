package transport

import (
	"context"
	"errors"
	"time"

	linkerr "bluepad/internal/errors"
	"bluepad/internal/retry"
	"bluepad/util"
)

// RetryDialer retries a failing Dial on a backoff schedule.  Callers
// still see a single error once the budget is spent.
type RetryDialer struct {
	Dialer  Dialer
	Backoff *retry.Backoff
	Logger  *util.Logger
}

// Dial tries the inner dialer until it succeeds, the error is not worth
// retrying, or the backoff gives up.
func (d *RetryDialer) Dial(ctx context.Context, dev Device) (Conn, error) {
	b := *d.Backoff
	b.Retryable = retryableDial
	b.OnRetry = func(attempt int, err error, wait time.Duration) {
		if d.Logger != nil {
			d.Logger.Warn("connect %s attempt %d: %v (retrying in %v)",
				dev.DisplayName(), attempt, err, wait.Round(time.Millisecond))
		}
	}

	var conn Conn
	err := b.Do(ctx, func(int) error {
		c, err := d.Dialer.Dial(ctx, dev)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	return conn, err
}

// Close closes the inner dialer.
func (d *RetryDialer) Close() error { return d.Dialer.Close() }

func retryableDial(err error) bool {
	switch {
	case errors.Is(err, linkerr.ErrUnsupported),
		errors.Is(err, linkerr.ErrAuthFailed),
		errors.Is(err, linkerr.ErrTunnelClosed),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}
