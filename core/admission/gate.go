package admission

import (
	"context"
	"time"

	"github.com/kilianp07/slotgate/core/logger"
	"github.com/kilianp07/slotgate/core/model"
)

// DefaultRetryDelay is the wait between two non-granting allocator calls.
const DefaultRetryDelay = 2 * time.Second

// StatusFunc receives human readable progress messages. An empty message
// clears the status.
type StatusFunc func(status string)

func (f StatusFunc) emit(s string) {
	if f != nil {
		f(s)
	}
}

// Gate polls an Allocator until a slot is granted or the allocator fails.
type Gate struct {
	alloc Allocator
	delay time.Duration
	log   logger.Logger
	wait  func(ctx context.Context, d time.Duration) error
}

// NewGate creates a Gate. A non-positive delay uses DefaultRetryDelay.
func NewGate(alloc Allocator, delay time.Duration, log logger.Logger) *Gate {
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	return &Gate{alloc: alloc, delay: delay, log: logger.OrNop(log), wait: sleep}
}

// RetryDelay returns the configured wait between polls.
func (g *Gate) RetryDelay() time.Duration { return g.delay }

// Acquire blocks until the allocator grants a slot for serverURL. It returns
// nil on grant and an *AdmissionError when the allocator call fails; a
// "not granted" answer is retried after the retry delay, without bound.
func (g *Gate) Acquire(ctx context.Context, serverURL string, cooldownSeconds int, onStatus StatusFunc) error {
	start := time.Now()
	onStatus.emit(model.StatusQueued)
	for attempt := 1; ; attempt++ {
		req := model.SlotRequest{ServerURL: serverURL, CooldownSeconds: cooldownSeconds}
		granted, err := g.alloc.AcquireSlot(ctx, req)
		if err != nil {
			admissionPolls.WithLabelValues(serverURL, "error").Inc()
			onStatus.emit(model.StatusCleared)
			g.log.Errorf("slot allocator failed for %s: %v", serverURL, err)
			return &AdmissionError{Server: serverURL, Err: err}
		}
		if granted {
			admissionPolls.WithLabelValues(serverURL, "granted").Inc()
			admissionWait.WithLabelValues(serverURL).Observe(time.Since(start).Seconds())
			onStatus.emit(model.StatusAcquired)
			g.log.Debugw("slot acquired", map[string]any{"server": serverURL, "attempts": attempt})
			return nil
		}
		admissionPolls.WithLabelValues(serverURL, "busy").Inc()
		onStatus.emit(model.StatusRetrying)
		g.log.Debugf("no free slot on %s, retrying in %s", serverURL, g.delay)
		if err := g.wait(ctx, g.delay); err != nil {
			onStatus.emit(model.StatusCleared)
			return &AdmissionError{Server: serverURL, Err: err}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
