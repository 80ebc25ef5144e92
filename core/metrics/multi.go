package metrics

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDispatchResult forwards the result to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordDispatchResult(res DispatchResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordDispatchResult(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordAttempt forwards attempts to sinks implementing AttemptRecorder.
func (m *MultiSink) RecordAttempt(rec AttemptRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(AttemptRecorder); ok {
			if err := r.RecordAttempt(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFallback forwards fallback records to sinks implementing
// FallbackRecorder.
func (m *MultiSink) RecordFallback(rec FallbackRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(FallbackRecorder); ok {
			if err := r.RecordFallback(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink exposing a Close method.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		switch c := s.(type) {
		case interface{ Close() }:
			c.Close()
		case interface{ Close() error }:
			_ = c.Close()
		}
	}
}
