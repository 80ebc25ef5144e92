// Package metrics defines the sinks that record dispatch outcomes. Sinks
// such as PromSink and InfluxSink live in infra/metrics and register
// themselves with RegisterMetricsSink; NewMetricsSink returns a MultiSink
// when several are configured. Attempt and fallback records reach sinks
// through the event collector subscribed to the internal event bus.
package metrics
