package app

import (
	coremetrics "github.com/kilianp07/slotgate/core/metrics"
	"github.com/kilianp07/slotgate/infra/logger"
)

// auditSink writes attempt and fallback records to the service logger. It is
// fed by the event collector, not by the dispatcher directly.
type auditSink struct {
	log logger.Logger
}

func (a auditSink) RecordDispatchResult(coremetrics.DispatchResult) error { return nil }

func (a auditSink) RecordAttempt(rec coremetrics.AttemptRecord) error {
	a.log.Debugw("attempt", map[string]any{
		"dispatch_id": rec.DispatchID,
		"operation":   rec.Operation,
		"origin":      rec.Origin,
		"status_code": rec.StatusCode,
		"success":     rec.Success,
		"latency_ms":  rec.Latency.Milliseconds(),
	})
	return nil
}

func (a auditSink) RecordFallback(rec coremetrics.FallbackRecord) error {
	a.log.Warnf("personal credential rejected at %s", rec.Time.Format("15:04:05"))
	return nil
}
