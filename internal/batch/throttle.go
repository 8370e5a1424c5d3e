package batch

import (
	"context"
	"fmt"
	"time"
)

// Default throttle configuration. Five items every two seconds keeps bulk
// runs under the backend's comfortable request rate.
const (
	DefaultBurstSize = 5
	DefaultInterval  = 2 * time.Second
)

// Throttle releases queued items in fixed-size bursts on a fixed interval.
// Bursts are strictly sequential and never overlap; the interval is
// measured from each burst's start, so fast dispatches do not compress
// the schedule and slow ones simply push the next burst back.
type Throttle struct {
	burstSize int
	interval  time.Duration
}

// NewThrottle validates the configuration and returns a scheduler.
func NewThrottle(burstSize int, interval time.Duration) (*Throttle, error) {
	if burstSize < 1 {
		return nil, fmt.Errorf("burst size must be positive, got %d", burstSize)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", interval)
	}
	return &Throttle{burstSize: burstSize, interval: interval}, nil
}

// BurstSize returns the configured items-per-burst limit.
func (t *Throttle) BurstSize() int { return t.burstSize }

// Interval returns the configured spacing between burst starts.
func (t *Throttle) Interval() time.Duration { return t.interval }

// Bursts splits items into bursts of at most the configured size,
// preserving input order.
func (t *Throttle) Bursts(items []TargetItem) [][]TargetItem {
	if len(items) == 0 {
		return nil
	}
	bursts := make([][]TargetItem, 0, (len(items)+t.burstSize-1)/t.burstSize)
	for start := 0; start < len(items); start += t.burstSize {
		end := start + t.burstSize
		if end > len(items) {
			end = len(items)
		}
		bursts = append(bursts, items[start:end])
	}
	return bursts
}

// Run releases items to dispatch one burst at a time. The first burst is
// released immediately; each later burst waits until the interval has
// elapsed since the previous burst started. Cancellation is honored only
// between bursts, never mid-dispatch. Run returns the number of items
// that were never released. A throttle is not restartable mid-queue; each
// call is a complete admission cycle.
func (t *Throttle) Run(ctx context.Context, items []TargetItem, dispatch func(burst []TargetItem)) (unreleased int) {
	bursts := t.Bursts(items)

	var started time.Time
	for i, burst := range bursts {
		if i == 0 {
			if ctx.Err() != nil {
				return len(items)
			}
		} else if err := t.wait(ctx, started); err != nil {
			return countItems(bursts[i:])
		}

		started = time.Now()
		dispatch(burst)
	}
	return 0
}

// wait blocks until the interval since started has elapsed. If dispatch
// already outlasted the interval the next burst may start immediately,
// but the cancellation check at the boundary still applies.
func (t *Throttle) wait(ctx context.Context, started time.Time) error {
	remaining := t.interval - time.Since(started)
	if remaining <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func countItems(bursts [][]TargetItem) int {
	n := 0
	for _, b := range bursts {
		n += len(b)
	}
	return n
}
