package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/slotgate/internal/eventbus"
)

func TestBusCollectorExportsDrops(t *testing.T) {
	reg := prometheus.NewRegistry()
	bus := eventbus.NewTypedWithBuffer[eventbus.Event](1)
	_ = bus.Subscribe()
	if _, err := RegisterBusStats(reg, bus); err != nil {
		t.Fatalf("register: %v", err)
	}
	bus.Publish("a")
	bus.Publish("b")

	expected := `
# HELP slotgate_eventbus_dropped_total Events dropped because a subscriber was full
# TYPE slotgate_eventbus_dropped_total counter
slotgate_eventbus_dropped_total 1
# HELP slotgate_eventbus_subscribers Active event bus subscriptions
# TYPE slotgate_eventbus_subscribers gauge
slotgate_eventbus_subscribers 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected)); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestRegisterBusStatsReusesCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := RegisterBusStats(reg, eventbus.New())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	next := eventbus.New()
	_ = next.Subscribe()
	_ = next.Subscribe()
	again, err := RegisterBusStats(reg, next)
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if again != first {
		t.Fatalf("expected existing collector to be reused")
	}
	if err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP slotgate_eventbus_subscribers Active event bus subscriptions
# TYPE slotgate_eventbus_subscribers gauge
slotgate_eventbus_subscribers 2
`), "slotgate_eventbus_subscribers"); err != nil {
		t.Fatalf("collector not pointed at the new bus: %v", err)
	}
}
