package util

import (
	"context"
	"fmt"
	"time"
)

// Retry calls fn up to maxAttempts times, doubling the delay between
// attempts starting from baseDelay. It returns nil as soon as a call
// succeeds; after the final failure it returns the last error annotated
// with the attempt count. Context cancellation is honoured between
// attempts, never mid-call.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 1; ; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseDelay << (attempt - 1)):
		}
	}

	return fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}
