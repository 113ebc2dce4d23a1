package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

const defaultMaxRetries = 3

var errPermanent = errors.New("permanent failure")

// permanent marks err as not worth retrying.
func permanent(err error) error {
	return fmt.Errorf("%w: %w", errPermanent, err)
}

// withRetry runs fn up to maxRetries times with exponential backoff starting
// at 100ms. ErrTaskExists and permanent errors stop the loop.
func withRetry(ctx context.Context, operation, taskID string, maxRetries int, fn func() error) error {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 100 * time.Millisecond
			slog.DebugContext(ctx, "retrying "+operation,
				slog.String("task_id", taskID),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := fn()
		if err == nil || errors.Is(err, ErrTaskExists) {
			return err
		}
		if errors.Is(err, errPermanent) {
			return err
		}
		lastErr = err
	}

	slog.ErrorContext(ctx, "all retries exhausted for "+operation,
		slog.String("task_id", taskID),
		slog.Int("max_retries", maxRetries),
		slog.String("error", lastErr.Error()),
	)
	return fmt.Errorf("failed %s after %d retries: %w", operation, maxRetries, lastErr)
}
