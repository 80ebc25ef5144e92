package metrics_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/kilianp07/slotgate/core/factory"
	metrics "github.com/kilianp07/slotgate/core/metrics"
	_ "github.com/kilianp07/slotgate/infra/metrics"
)

func TestMetricsFactory_Builtins(t *testing.T) {
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	if err != nil {
		t.Fatalf("create nop: %v", err)
	}
	if s == nil {
		t.Fatal("expected sink instance")
	}
	if _, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestNewMetricsSink_Multi(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("nil config: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink got %T", s)
	}
	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	if err != nil {
		t.Fatalf("multi config: %v", err)
	}
	ms, ok := s.(*metrics.MultiSink)
	if !ok || len(ms.Sinks) != 2 {
		t.Fatalf("expected MultiSink with 2 sinks got %T", s)
	}
}

type closingSink struct {
	metrics.NopSink
	closed bool
}

func (c *closingSink) Close() { c.closed = true }

func TestNewMetricsSink_FailureClosesBuilt(t *testing.T) {
	built := &closingSink{}
	if err := metrics.RegisterMetricsSink("closing-test", func(map[string]any) (metrics.MetricsSink, error) {
		return built, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "closing-test"}, {Type: "missing"}})
	if !errors.Is(err, factory.ErrUnknownType) {
		t.Fatalf("expected unknown type error got %v", err)
	}
	if !strings.Contains(err.Error(), "sink 1 (missing)") {
		t.Fatalf("error does not name the failing entry: %v", err)
	}
	if !built.closed {
		t.Fatal("expected the already built sink to be closed")
	}
}
