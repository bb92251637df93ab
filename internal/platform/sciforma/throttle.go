package sciforma

import (
	"context"
	"sync"
	"time"
)

// throttle spaces outbound calls at least one interval apart, derived from a
// requests-per-second budget. A zero interval disables it. Slots are
// reserved under the lock, so concurrent callers queue instead of bursting.
type throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func newThrottle(rps float64) *throttle {
	if rps <= 0 {
		return &throttle{}
	}
	return &throttle{interval: time.Duration(float64(time.Second) / rps)}
}

// wait blocks until the caller's slot arrives or ctx is done.
func (t *throttle) wait(ctx context.Context) error {
	if t == nil || t.interval <= 0 {
		return nil
	}

	t.mu.Lock()
	now := time.Now()
	slot := t.last.Add(t.interval)
	if slot.Before(now) {
		slot = now
	}
	t.last = slot
	t.mu.Unlock()

	d := time.Until(slot)
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
