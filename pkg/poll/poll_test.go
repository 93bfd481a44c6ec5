package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		Interval: 5 * time.Millisecond,
		Timeout:  200 * time.Millisecond,
	}
}

func TestUntilImmediateSuccess(t *testing.T) {
	calls := 0
	err := Until(context.Background(), fastConfig(), func() bool {
		calls++
		return true
	})
	if err != nil {
		t.Fatalf("Until returned error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one check, got %d", calls)
	}
}

func TestUntilEventualSuccess(t *testing.T) {
	var calls int32
	err := Until(context.Background(), fastConfig(), func() bool {
		return atomic.AddInt32(&calls, 1) >= 4
	})
	if err != nil {
		t.Fatalf("Until returned error: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got < 4 {
		t.Errorf("expected at least 4 checks, got %d", got)
	}
}

func TestUntilTimeout(t *testing.T) {
	cfg := Config{Interval: 5 * time.Millisecond, Timeout: 30 * time.Millisecond}

	start := time.Now()
	err := Until(context.Background(), cfg, func() bool { return false })
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed < cfg.Timeout {
		t.Errorf("returned before timeout: %v", elapsed)
	}
}

func TestUntilContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := Until(ctx, Config{Interval: 5 * time.Millisecond, Timeout: time.Minute}, func() bool {
		return false
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Interval != 250*time.Millisecond {
		t.Errorf("default interval = %v", cfg.Interval)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("default timeout = %v", cfg.Timeout)
	}
}
