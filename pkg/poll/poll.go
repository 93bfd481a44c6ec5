package poll

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when the condition did not hold before the deadline
var ErrTimeout = errors.New("poll: condition not met before timeout")

// Condition reports whether the awaited state has been reached
type Condition func() bool

// Config holds the poll parameters. Interval and timeout are explicit
// configuration, not literals buried in call sites.
type Config struct {
	// Interval between condition checks
	Interval time.Duration
	// Timeout bounds the whole wait
	Timeout time.Duration
}

// DefaultConfig returns poll parameters suitable for watching the
// browser's download marker files
func DefaultConfig() Config {
	return Config{
		Interval: 250 * time.Millisecond,
		Timeout:  15 * time.Second,
	}
}

// Until re-checks cond at the configured interval until it holds,
// the timeout elapses (ErrTimeout) or the context is done.
// The condition is checked once immediately before any sleep.
func Until(ctx context.Context, cfg Config, cond Condition) error {
	if cond() {
		return nil
	}

	deadline := time.NewTimer(cfg.Timeout)
	defer deadline.Stop()
	tick := time.NewTicker(cfg.Interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrTimeout
		case <-tick.C:
			if cond() {
				return nil
			}
		}
	}
}
