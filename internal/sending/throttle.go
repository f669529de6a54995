package sending

import (
	"context"
	"sync"
	"time"
)

// Throttler paces a dispatch run. Two independent controls: a fixed delay
// between consecutive sends, and a per-minute cap. Either can be zero to
// disable it. A nil *Throttler is valid and never waits.
type Throttler struct {
	mu          sync.Mutex
	delay       time.Duration
	perMinute   int
	windowStart time.Time
	sentInWin   int
	lastSend    time.Time
}

// NewThrottler creates a throttler with the given inter-send delay and
// per-minute send cap.
func NewThrottler(delay time.Duration, perMinute int) *Throttler {
	return &Throttler{delay: delay, perMinute: perMinute}
}

// Wait blocks until the next send is allowed or the context is done.
func (t *Throttler) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	for {
		d := t.nextDelay()
		if d <= 0 {
			return nil
		}
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Record notes a completed send attempt for rate accounting.
func (t *Throttler) Record() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if t.perMinute > 0 {
		if now.Sub(t.windowStart) >= time.Minute {
			t.windowStart = now
			t.sentInWin = 0
		}
		t.sentInWin++
	}
	t.lastSend = now
}

// nextDelay returns how long the caller must still wait, or <= 0 when a
// send may proceed now.
func (t *Throttler) nextDelay() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	var wait time.Duration

	if t.delay > 0 && !t.lastSend.IsZero() {
		if d := t.delay - now.Sub(t.lastSend); d > wait {
			wait = d
		}
	}

	if t.perMinute > 0 && t.sentInWin >= t.perMinute {
		if d := time.Minute - now.Sub(t.windowStart); d > wait {
			wait = d
		}
	}

	return wait
}
