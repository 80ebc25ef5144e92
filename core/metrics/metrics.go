package metrics

import "time"

// DispatchResult summarises one finished dispatch.
type DispatchResult struct {
	DispatchID string
	Operation  string
	Endpoint   string
	Server     string
	Origin     string
	Success    bool
	ErrorKind  string
	StatusCode int
	TokenCount int
	Latency    time.Duration
	Admission  time.Duration
	Time       time.Time
}

// MetricsSink records dispatch results for observability purposes.
type MetricsSink interface {
	RecordDispatchResult(res DispatchResult) error
}

// AttemptRecord captures a single HTTP attempt.
type AttemptRecord struct {
	DispatchID string
	Operation  string
	Origin     string
	StatusCode int
	Success    bool
	Latency    time.Duration
	Time       time.Time
}

// AttemptRecorder is implemented by sinks that track individual attempts.
type AttemptRecorder interface {
	RecordAttempt(rec AttemptRecord) error
}

// FallbackRecord marks a personalTokenFailed broadcast.
type FallbackRecord struct {
	Time time.Time
}

// FallbackRecorder is implemented by sinks that count fallback signals.
type FallbackRecorder interface {
	RecordFallback(rec FallbackRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDispatchResult(DispatchResult) error { return nil }
func (NopSink) RecordAttempt(AttemptRecord) error         { return nil }
func (NopSink) RecordFallback(FallbackRecord) error       { return nil }
