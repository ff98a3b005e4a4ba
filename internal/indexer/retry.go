package indexer

import (
	"context"
	"time"
)

const maxRetryDelay = 30 * time.Second

// retryPolicy bounds how a failing page fetch is repeated.
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	retryable  func(error) bool
}

// do runs fn until it succeeds, the error is not retryable, or attempts run out.
// The delay doubles per attempt up to maxRetryDelay.
func (p retryPolicy) do(ctx context.Context, fn func(context.Context) error) error {
	maxRetries := p.maxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := p.baseDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || (p.retryable != nil && !p.retryable(err)) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}
