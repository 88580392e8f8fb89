package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2.0}
}

func TestDoSucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &SourceError{Provider: "tavily", StatusCode: 503, Err: errors.New("unavailable")}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), func(ctx context.Context) error {
		calls++
		return &SourceError{Provider: "tavily", StatusCode: 400, Err: errors.New("bad request")}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1: 400 must not be retried", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	wantErr := errors.New("network down")
	err := Do(context.Background(), fastPolicy(), func(ctx context.Context) error {
		calls++
		return &SourceError{Provider: "reddit", Err: wantErr}
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped %v", err, wantErr)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want all attempts used", calls)
	}
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{MaxAttempts: 5, BaseDelay: time.Minute, Multiplier: 2.0}, func(ctx context.Context) error {
		calls++
		cancel()
		return &SourceError{Provider: "reddit", Err: errors.New("fail")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSourceErrorRetryable(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{0, true},
		{401, true},
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{403, false},
		{404, false},
	}
	for _, tc := range cases {
		e := &SourceError{Provider: "x", StatusCode: tc.status, Err: errors.New("e")}
		if got := e.Retryable(); got != tc.want {
			t.Errorf("Retryable(status=%d) = %v, want %v", tc.status, got, tc.want)
		}
	}
}
