package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	dispatchAttempts *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	fallbackSignals  prometheus.Counter
	logStoreFailures prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.HistogramVec, prometheus.Counter, prometheus.Counter) {
	att := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_attempts_total",
			Help: "HTTP attempts by operation, credential origin and outcome",
		},
		[]string{"operation", "origin", "outcome"},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_duration_seconds",
			Help:    "End-to-end dispatch duration including admission",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)
	fb := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_fallback_signals_total",
			Help: "Number of personalTokenFailed signals emitted",
		},
	)
	ls := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_log_store_failures_total",
			Help: "Log entries that could not be persisted",
		},
	)
	return att, dur, fb, ls
}

func init() {
	dispatchAttempts, dispatchDuration, fallbackSignals, logStoreFailures = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(dispatchAttempts, dispatchDuration, fallbackSignals, logStoreFailures)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	dispatchAttempts, dispatchDuration, fallbackSignals, logStoreFailures = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
