package admission

import "github.com/prometheus/client_golang/prometheus"

var (
	admissionPolls *prometheus.CounterVec
	admissionWait  *prometheus.HistogramVec
)

func newCollectors() (*prometheus.CounterVec, *prometheus.HistogramVec) {
	polls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_polls_total",
			Help: "Slot allocator calls by outcome",
		},
		[]string{"server", "outcome"},
	)
	wait := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admission_wait_seconds",
			Help:    "Time spent waiting for a server slot",
			Buckets: []float64{0.05, 0.5, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"server"},
	)
	return polls, wait
}

func init() {
	admissionPolls, admissionWait = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers admission metrics on reg, or on the default
// registerer when reg is nil.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(admissionPolls, admissionWait)
}

// ResetMetrics recreates the collectors for tests and registers them on reg
// when it is not nil.
func ResetMetrics(reg prometheus.Registerer) {
	admissionPolls, admissionWait = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
