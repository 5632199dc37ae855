package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_DefaultIsSingleAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Default, func(error) bool { return true }, func(context.Context) error {
		calls++
		return errors.New("always")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (single round trip by default)", calls)
	}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	opts := Options{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
	calls := 0
	err := Do(context.Background(), opts, func(error) bool { return true }, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	opts := Options{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2}
	fatal := errors.New("fatal")
	calls := 0
	err := Do(context.Background(), opts, func(err error) bool { return !errors.Is(err, fatal) }, func(context.Context) error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("got %v, want fatal", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDo_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := Options{MaxAttempts: 3, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 2}
	go cancel()

	err := Do(ctx, opts, func(error) bool { return true }, func(context.Context) error {
		return errors.New("trigger backoff")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
