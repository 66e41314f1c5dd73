// Package retry is the single bounded-retry policy used for outbound
// calls (OCR providers, barcode image fetch). Exponential backoff with
// jitter, capped attempts, context-aware.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Permanent wraps err so Do stops retrying immediately. Provider-reported
// processing errors are permanent: the same image will fail again.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs fn up to maxAttempts times. The first attempt is immediate;
// subsequent attempts wait an exponentially growing, jittered interval
// starting at initial. Returns the last error when all attempts fail.
func Do(ctx context.Context, maxAttempts int, initial time.Duration, fn func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.RandomizationFactor = 0.3
	b.MaxElapsedTime = 0 // attempts are the bound, not wall time

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxAttempts-1)), ctx)

	return backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return fn(ctx)
	}, policy)
}
