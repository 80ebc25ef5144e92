package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// BusStats is the view of an event bus exported as metrics.
type BusStats interface {
	Dropped() uint64
	Subscribers() int
}

// BusCollector exports event bus drops and subscriptions.
type BusCollector struct {
	mu      sync.RWMutex
	src     BusStats
	dropped *prometheus.Desc
	subs    *prometheus.Desc
}

// NewBusCollector returns a collector reading src on every scrape.
func NewBusCollector(src BusStats) *BusCollector {
	return &BusCollector{
		src:     src,
		dropped: prometheus.NewDesc("slotgate_eventbus_dropped_total", "Events dropped because a subscriber was full", nil, nil),
		subs:    prometheus.NewDesc("slotgate_eventbus_subscribers", "Active event bus subscriptions", nil, nil),
	}
}

// SetSource swaps the bus read by the collector.
func (c *BusCollector) SetSource(src BusStats) {
	c.mu.Lock()
	c.src = src
	c.mu.Unlock()
}

// Describe implements prometheus.Collector.
func (c *BusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.dropped
	ch <- c.subs
}

// Collect implements prometheus.Collector.
func (c *BusCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	src := c.src
	c.mu.RUnlock()
	if src == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(src.Dropped()))
	ch <- prometheus.MustNewConstMetric(c.subs, prometheus.GaugeValue, float64(src.Subscribers()))
}

// RegisterBusStats exports src on reg, or on the default registerer when
// nil. A collector already registered is pointed at src.
func RegisterBusStats(reg prometheus.Registerer, src BusStats) (*BusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c, err := register(reg, NewBusCollector(src))
	if err != nil {
		return nil, err
	}
	c.SetSource(src)
	return c, nil
}
