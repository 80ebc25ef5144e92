package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/slotgate/core/metrics"
	"github.com/kilianp07/slotgate/infra/logger"
)

// InfluxConfig configures InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes dispatch outcomes to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordDispatchResult writes one dispatch_result point.
func (s *InfluxSink) RecordDispatchResult(r coremetrics.DispatchResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("dispatch_result").
		AddTag("dispatch_id", r.DispatchID).
		AddTag("operation", r.Operation).
		AddTag("success", strconv.FormatBool(r.Success))
	if r.Server != "" {
		p = p.AddTag("server", r.Server)
	}
	if r.Origin != "" {
		p = p.AddTag("origin", r.Origin)
	}
	if r.ErrorKind != "" {
		p = p.AddTag("error_kind", r.ErrorKind)
	}
	p = p.AddField("status_code", r.StatusCode).
		AddField("tokens", r.TokenCount).
		AddField("latency_ms", r.Latency.Milliseconds()).
		AddField("admission_ms", r.Admission.Milliseconds()).
		SetTime(r.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAttempt writes one dispatch_attempt point.
func (s *InfluxSink) RecordAttempt(r coremetrics.AttemptRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("dispatch_attempt").
		AddTag("dispatch_id", r.DispatchID).
		AddTag("operation", r.Operation).
		AddTag("origin", r.Origin).
		AddField("success", r.Success).
		AddField("status_code", r.StatusCode).
		AddField("latency_ms", r.Latency.Milliseconds()).
		SetTime(r.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFallback writes one fallback_signal point.
func (s *InfluxSink) RecordFallback(r coremetrics.FallbackRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fallback_signal").
		AddTag("event", "personalTokenFailed").
		AddField("count", 1).
		SetTime(r.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }
