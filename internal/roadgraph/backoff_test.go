package roadgraph

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeSleep records requested delays without waiting.
type fakeSleep struct {
	delays []time.Duration
}

func (f *fakeSleep) sleep(ctx context.Context, d time.Duration) error {
	f.delays = append(f.delays, d)
	return nil
}

func retryableErr(endpoint string) error {
	return &RequestError{Endpoint: endpoint, StatusCode: 503, Err: errors.New("unavailable")}
}

func TestExecuteSucceedsFirstTry(t *testing.T) {
	fs := &fakeSleep{}
	p := RetryPolicy{Endpoints: []string{"a"}, MaxAttempts: 3, InitialBackoff: time.Second, Sleep: fs.sleep}

	calls := 0
	err := p.Execute(context.Background(), func(ctx context.Context, endpoint string) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 || len(fs.delays) != 0 {
		t.Fatalf("calls=%d sleeps=%d, want 1/0", calls, len(fs.delays))
	}
}

func TestExecuteExponentialBackoffThenFailover(t *testing.T) {
	fs := &fakeSleep{}
	p := RetryPolicy{Endpoints: []string{"a", "b"}, MaxAttempts: 3, InitialBackoff: 100 * time.Millisecond, Sleep: fs.sleep}

	var sequence []string
	err := p.Execute(context.Background(), func(ctx context.Context, endpoint string) error {
		sequence = append(sequence, endpoint)
		if endpoint == "a" {
			return retryableErr(endpoint)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Three attempts on a, then first attempt on b succeeds.
	want := []string{"a", "a", "a", "b"}
	if len(sequence) != len(want) {
		t.Fatalf("sequence %v, want %v", sequence, want)
	}
	for i := range want {
		if sequence[i] != want[i] {
			t.Fatalf("sequence %v, want %v", sequence, want)
		}
	}

	// Two sleeps within endpoint a, doubling.
	if len(fs.delays) != 2 || fs.delays[0] != 100*time.Millisecond || fs.delays[1] != 200*time.Millisecond {
		t.Fatalf("delays %v, want [100ms 200ms]", fs.delays)
	}
}

func TestExecuteAllEndpointsExhausted(t *testing.T) {
	fs := &fakeSleep{}
	p := RetryPolicy{Endpoints: []string{"a", "b"}, MaxAttempts: 2, InitialBackoff: time.Millisecond, Sleep: fs.sleep}

	calls := 0
	err := p.Execute(context.Background(), func(ctx context.Context, endpoint string) error {
		calls++
		return retryableErr(endpoint)
	})
	if err == nil {
		t.Fatal("expected terminal error")
	}
	if calls != 4 {
		t.Fatalf("calls = %d, want 4 (2 per endpoint)", calls)
	}
}

func TestExecuteNonRetryableFailsFast(t *testing.T) {
	fs := &fakeSleep{}
	p := RetryPolicy{Endpoints: []string{"a", "b"}, MaxAttempts: 3, InitialBackoff: time.Second, Sleep: fs.sleep}

	calls := 0
	err := p.Execute(context.Background(), func(ctx context.Context, endpoint string) error {
		calls++
		return &RequestError{Endpoint: endpoint, StatusCode: 429, Err: errors.New("rate limited")}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 || len(fs.delays) != 0 {
		t.Fatalf("429 must fail fast: calls=%d sleeps=%d", calls, len(fs.delays))
	}
}

func TestRequestErrorClassification(t *testing.T) {
	cases := []struct {
		status    int
		retryable bool
	}{
		{0, true}, // network / timeout
		{502, true},
		{503, true},
		{504, true},
		{400, false},
		{429, false},
		{500, false},
	}
	for _, tc := range cases {
		err := &RequestError{Endpoint: "x", StatusCode: tc.status, Err: errors.New("boom")}
		if got := IsRetryable(err); got != tc.retryable {
			t.Errorf("status %d: retryable = %v, want %v", tc.status, got, tc.retryable)
		}
	}

	if IsRetryable(fmt.Errorf("plain error")) {
		t.Error("plain errors are not retryable")
	}
	wrapped := fmt.Errorf("context: %w", &RequestError{StatusCode: 503, Err: errors.New("boom")})
	if !IsRetryable(wrapped) {
		t.Error("wrapped RequestError must classify through errors.As")
	}
}
