package store

import (
	"context"
	"errors"
	"testing"
	"time"

	perr "crosspost/internal/platform/errors"
	"crosspost/internal/platform/testkit"
)

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	var slept []time.Duration
	testkit.Swap(t, &sleep, func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	})
	testkit.Swap(t, &backoffStart, 100*time.Millisecond)
	testkit.Swap(t, &backoffCeiling, 300*time.Millisecond)

	calls, fails := 0, 0
	err := retry(context.Background(), 5, func(context.Context) error {
		calls++
		if calls < 4 {
			return errors.New("not yet")
		}
		return nil
	}, func(int, error) { fails++ })
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if calls != 4 || fails != 3 {
		t.Fatalf("calls=%d fails=%d", calls, fails)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}
	if len(slept) != len(want) {
		t.Fatalf("slept %v", slept)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Fatalf("backoff[%d] = %v want %v", i, slept[i], want[i])
		}
	}
}

func TestRetry_Exhausted(t *testing.T) {
	testkit.Swap(t, &sleep, func(context.Context, time.Duration) error { return nil })

	calls := 0
	err := retry(context.Background(), 3, func(context.Context) error {
		calls++
		return errors.New("refused")
	}, nil)
	testkit.MustCode(t, err, perr.ErrorCodeUnavailable)
	testkit.MustContain(t, err.Error(), "not ready after 3 attempts")
	if calls != 3 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestRetry_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, 10, func(context.Context) error {
		calls++
		cancel()
		return errors.New("refused")
	}, nil)
	testkit.MustCode(t, err, perr.ErrorCodeUnavailable)
	if calls != 1 || !errors.Is(err, context.Canceled) {
		t.Fatalf("calls=%d err=%v", calls, err)
	}
}

func TestRetry_SleepInterrupted(t *testing.T) {
	testkit.Swap(t, &sleep, func(context.Context, time.Duration) error { return context.DeadlineExceeded })
	err := retry(context.Background(), 3, func(context.Context) error { return errors.New("x") }, nil)
	testkit.MustCode(t, err, perr.ErrorCodeUnavailable)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("sleep error not wrapped: %v", err)
	}
}

func TestSleep_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("sleep = %v", err)
	}
	if err := sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("sleep = %v", err)
	}
}

func TestOpenPG_BadURL(t *testing.T) {
	_, err := openPG(context.Background(), Config{PG: PGConfig{Enabled: true, URL: ""}}, &Store{})
	testkit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
}

func TestOpenCH_BadURL(t *testing.T) {
	_, err := openCH(context.Background(), Config{CH: CHConfig{Enabled: true, URL: "://nope"}})
	testkit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
}
