package roadgraph

import (
	"context"
	"fmt"
	"time"
)

// SleepFunc pauses between attempts. Tests inject a recorder; production
// uses RealSleep.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RealSleep waits for the duration or until the context is done.
func RealSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryPolicy is an explicit retry state machine: a bounded number of
// attempts per endpoint with exponential backoff, failing over to the next
// endpoint when one is exhausted. Keeping the state explicit makes the
// policy testable without real delays.
type RetryPolicy struct {
	Endpoints      []string
	MaxAttempts    int // per endpoint
	InitialBackoff time.Duration
	Sleep          SleepFunc
}

// retryState tracks where the machine is within the policy.
type retryState struct {
	endpointIdx int
	attempt     int
	backoff     time.Duration
}

// Execute runs fn against endpoints in order until it succeeds, a
// non-retryable error occurs, or every endpoint's attempts are exhausted.
func (p RetryPolicy) Execute(ctx context.Context, fn func(ctx context.Context, endpoint string) error) error {
	if len(p.Endpoints) == 0 {
		return fmt.Errorf("retry policy has no endpoints")
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = RealSleep
	}

	st := retryState{backoff: p.InitialBackoff}
	var lastErr error

	for st.endpointIdx < len(p.Endpoints) {
		endpoint := p.Endpoints[st.endpointIdx]

		err := fn(ctx, endpoint)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return fmt.Errorf("non-retryable error from %s: %w", endpoint, err)
		}

		st.attempt++
		if st.attempt >= p.MaxAttempts {
			// This endpoint is exhausted; advance to the next one with a
			// fresh attempt counter and backoff.
			st.endpointIdx++
			st.attempt = 0
			st.backoff = p.InitialBackoff
			continue
		}

		if err := sleep(ctx, st.backoff); err != nil {
			return err
		}
		st.backoff *= 2
	}

	return fmt.Errorf("all endpoints exhausted after retries: %w", lastErr)
}
