package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestRetryStopsAfterSuccess tests that success ends the attempts.
func TestRetryStopsAfterSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{MaxAttempts: 5, Delay: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

// TestRetryExhaustsAttempts tests that the last error surfaces.
func TestRetryExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("still broken")
	calls := 0
	err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}, func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

// TestRetryZeroAttemptsRunsOnce tests the attempt floor.
func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Retry(context.Background(), RetryPolicy{}, func() error {
		calls++
		return errors.New("x")
	})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

// TestRetryHonorsCancellation tests that cancellation cuts the backoff.
func TestRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Retry(ctx, RetryPolicy{MaxAttempts: 10, Delay: time.Minute}, func() error {
		calls++
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}
