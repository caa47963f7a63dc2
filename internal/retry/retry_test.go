package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func recordingPolicy(p Policy, waits *[]time.Duration) Policy {
	return p.Instant(func(d time.Duration) {
		*waits = append(*waits, d)
	})
}

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	var waits []time.Duration
	p := recordingPolicy(Default(), &waits)

	calls := 0
	err := p.Do(context.Background(), func(_ context.Context, _ int) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 || len(waits) != 0 {
		t.Errorf("calls=%d waits=%v", calls, waits)
	}
}

func TestDo_DefaultScheduleIsFixed(t *testing.T) {
	var waits []time.Duration
	p := recordingPolicy(Default(), &waits)
	boom := errors.New("boom")

	calls := 0
	err := p.Do(context.Background(), func(_ context.Context, _ int) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if len(waits) != 2 || waits[0] != 5*time.Second || waits[1] != 5*time.Second {
		t.Errorf("waits = %v, want [5s 5s]", waits)
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	var waits []time.Duration
	p := recordingPolicy(Default(), &waits)

	var retried []int
	p.OnRetry = func(attempt int, _ time.Duration, _ error) { retried = append(retried, attempt) }

	err := p.Do(context.Background(), func(_ context.Context, attempt int) error {
		if attempt < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
		t.Errorf("OnRetry attempts = %v", retried)
	}
}

func TestDo_PermanentStops(t *testing.T) {
	var waits []time.Duration
	p := recordingPolicy(Default(), &waits)
	bad := errors.New("bad input")

	calls := 0
	err := p.Do(context.Background(), func(_ context.Context, _ int) error {
		calls++
		return Permanent(bad)
	})
	if !errors.Is(err, bad) || !IsPermanent(err) {
		t.Fatalf("expected permanent bad input, got %v", err)
	}
	if calls != 1 || len(waits) != 0 {
		t.Errorf("calls=%d waits=%v", calls, waits)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var waits []time.Duration
	p := recordingPolicy(Default(), &waits)

	calls := 0
	err := p.Do(ctx, func(_ context.Context, _ int) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt, got %d", calls)
	}
}

func TestDo_AlreadyCancelledSkipsCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Default().Do(ctx, func(_ context.Context, _ int) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) || calls != 0 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestNewBackOff_Exponential(t *testing.T) {
	p := Policy{BaseDelay: time.Second, Multiplier: 2, MaxDelay: 5 * time.Second}
	b := p.NewBackOff()
	b.Reset()
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := b.NextBackOff(); got != w {
			t.Errorf("delay %d = %v, want %v", i+1, got, w)
		}
	}
}

func TestNewBackOff_ConstantCappedByMaxDelay(t *testing.T) {
	p := Policy{BaseDelay: 10 * time.Second, Multiplier: 1, MaxDelay: 3 * time.Second}
	b := p.NewBackOff()
	for i := range 3 {
		if got := b.NextBackOff(); got != 3*time.Second {
			t.Errorf("delay %d = %v, want 3s", i+1, got)
		}
	}
}

func TestDo_ExponentialScheduleObserved(t *testing.T) {
	var waits []time.Duration
	p := recordingPolicy(Policy{MaxAttempts: 4, BaseDelay: time.Second, Multiplier: 2, MaxDelay: 3 * time.Second}, &waits)

	_ = p.Do(context.Background(), func(_ context.Context, _ int) error {
		return errors.New("x")
	})
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}
	if len(waits) != len(want) {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Errorf("waits = %v, want %v", waits, want)
		}
	}
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	p := Policy{}.Instant(func(time.Duration) {})
	calls := 0
	_ = p.Do(context.Background(), func(_ context.Context, _ int) error {
		calls++
		return errors.New("x")
	})
	if calls != 1 {
		t.Errorf("expected 1 attempt, got %d", calls)
	}
}
