package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/slotgate/core/events"
	coremetrics "github.com/kilianp07/slotgate/core/metrics"
	"github.com/kilianp07/slotgate/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards attempt and
// fallback events to sinks implementing the optional recorder interfaces.
// It stops when the context is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				collect(ev, sink)
			}
		}
	}()
}

func collect(ev eventbus.Event, sink coremetrics.MetricsSink) {
	switch e := ev.(type) {
	case events.AttemptEvent:
		if r, ok := sink.(coremetrics.AttemptRecorder); ok {
			_ = r.RecordAttempt(coremetrics.AttemptRecord{
				DispatchID: e.DispatchID,
				Operation:  e.Operation,
				Origin:     e.Origin.String(),
				StatusCode: e.StatusCode,
				Success:    e.Err == nil,
				Latency:    e.Latency,
				Time:       time.Now(),
			})
		}
	case events.FallbackSignal:
		if r, ok := sink.(coremetrics.FallbackRecorder); ok {
			_ = r.RecordFallback(coremetrics.FallbackRecord{Time: time.Now()})
		}
	}
}
