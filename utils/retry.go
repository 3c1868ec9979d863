package utils

import (
	"context"
	"time"
)

// RetryPolicy bounds an operation's attempts. Delay grows linearly with
// the attempt number.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Retry runs op until it succeeds, the policy is exhausted, or ctx is
// cancelled. The last error is returned.
func Retry(ctx context.Context, policy RetryPolicy, op func() error) error {
	attempts := policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		backoff := policy.Delay * time.Duration(attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
