package events

import (
	"context"

	"github.com/kilianp07/slotgate/internal/eventbus"
)

// PersonalTokenFailed is the wire name of the fallback signal.
const PersonalTokenFailed = "personalTokenFailed"

// FallbackSignal is broadcast when an attempt with the personal credential
// fails. It carries no payload; listeners decide how to recover.
type FallbackSignal struct{}

// Name returns PersonalTokenFailed.
func (FallbackSignal) Name() string { return PersonalTokenFailed }

// BusNotifier delivers fallback signals on an in-process typed bus.
type BusNotifier struct {
	Bus *eventbus.TypedBus[FallbackSignal]
}

// NewBusNotifier creates a notifier with its own bus.
func NewBusNotifier() *BusNotifier {
	return &BusNotifier{Bus: eventbus.NewTyped[FallbackSignal]()}
}

// NotifyFallback publishes one FallbackSignal.
func (n *BusNotifier) NotifyFallback(context.Context) error {
	n.Bus.Publish(FallbackSignal{})
	return nil
}

// Subscribe returns a channel receiving fallback signals.
func (n *BusNotifier) Subscribe() <-chan FallbackSignal { return n.Bus.Subscribe() }

// Close closes the underlying bus.
func (n *BusNotifier) Close() { n.Bus.Close() }
