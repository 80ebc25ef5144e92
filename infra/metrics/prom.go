package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/slotgate/core/metrics"
)

// PromSink records dispatch outcomes in Prometheus metrics.
type PromSink struct {
	results   *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	admission *prometheus.HistogramVec
	tokens    *prometheus.CounterVec
	attempts  *prometheus.HistogramVec
	fallbacks prometheus.Counter
}

// NewPromSink registers dispatch metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "slotgate_dispatch_results_total",
		Help: "Finished dispatches by operation, server and error kind",
	}, []string{"operation", "server", "success", "error_kind"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "slotgate_dispatch_latency_seconds",
		Help:    "Total dispatch latency including admission",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"operation", "success"})
	admission := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "slotgate_admission_seconds",
		Help:    "Time spent waiting for a slot",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"server"})
	tokens := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "slotgate_tokens_total",
		Help: "Tokens reported by successful generations",
	}, []string{"operation"})
	attempts := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "slotgate_attempt_latency_seconds",
		Help:    "HTTP attempt latency by credential origin",
		Buckets: prometheus.DefBuckets,
	}, []string{"origin", "success"})
	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slotgate_fallback_signals_total",
		Help: "personalTokenFailed signals observed",
	})

	var err error
	if results, err = register(reg, results); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if admission, err = register(reg, admission); err != nil {
		return nil, err
	}
	if tokens, err = register(reg, tokens); err != nil {
		return nil, err
	}
	if attempts, err = register(reg, attempts); err != nil {
		return nil, err
	}
	if fallbacks, err = register(reg, fallbacks); err != nil {
		return nil, err
	}
	return &PromSink{
		results:   results,
		latency:   latency,
		admission: admission,
		tokens:    tokens,
		attempts:  attempts,
		fallbacks: fallbacks,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordDispatchResult updates the result counters and histograms.
func (s *PromSink) RecordDispatchResult(r coremetrics.DispatchResult) error {
	success := boolLabel(r.Success)
	s.results.WithLabelValues(r.Operation, r.Server, success, r.ErrorKind).Inc()
	s.latency.WithLabelValues(r.Operation, success).Observe(r.Latency.Seconds())
	if r.Server != "" {
		s.admission.WithLabelValues(r.Server).Observe(r.Admission.Seconds())
	}
	if r.TokenCount > 0 {
		s.tokens.WithLabelValues(r.Operation).Add(float64(r.TokenCount))
	}
	return nil
}

// RecordAttempt observes the attempt latency.
func (s *PromSink) RecordAttempt(r coremetrics.AttemptRecord) error {
	s.attempts.WithLabelValues(r.Origin, boolLabel(r.Success)).Observe(r.Latency.Seconds())
	return nil
}

// RecordFallback counts a fallback signal.
func (s *PromSink) RecordFallback(coremetrics.FallbackRecord) error {
	s.fallbacks.Inc()
	return nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
