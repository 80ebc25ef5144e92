package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/slotgate/core/events"
	"github.com/kilianp07/slotgate/core/logger"
	coremon "github.com/kilianp07/slotgate/core/monitoring"
	infralogger "github.com/kilianp07/slotgate/infra/logger"
)

// FallbackMessage is the payload published for every fallback signal.
type FallbackMessage struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Timestamp int64  `json:"timestamp"`
}

// FallbackPublisher broadcasts personalTokenFailed signals to an MQTT
// broker so that other processes of the same user can switch credentials.
type FallbackPublisher struct {
	cli        pahoClient
	topic      string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
	logger     logger.Logger
}

// NewFallbackPublisher connects to the broker described by cfg.
func NewFallbackPublisher(cfg Config) (*FallbackPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := infralogger.New("mqtt_fallback")
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &FallbackPublisher{
		cli:        c,
		topic:      cfg.Topic("events", events.PersonalTokenFailed),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		timeout:    time.Duration(cfg.PublishTimeoutMS) * time.Millisecond,
		logger:     log,
	}, nil
}

// Topic returns the topic fallback signals are published on.
func (p *FallbackPublisher) Topic() string { return p.topic }

// ErrPublishTimeout is returned when the broker does not acknowledge a
// fallback message within the publish timeout.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// NotifyFallback publishes one FallbackMessage, retrying with exponential
// backoff. The whole call is bounded by the publish timeout. The final error
// is reported to the monitor.
func (p *FallbackPublisher) NotifyFallback(ctx context.Context) error {
	payload, err := json.Marshal(FallbackMessage{
		ID:        uuid.NewString(),
		Event:     events.PersonalTokenFailed,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	deadline, _ := ctx.Deadline()

	var publishErr error
retry:
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(p.topic, p.qos, p.retain, payload)
		if !token.WaitTimeout(time.Until(deadline)) {
			publishErr = ErrPublishTimeout
			break
		}
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %s", p.topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			publishErr = ctx.Err()
			if errors.Is(publishErr, context.DeadlineExceeded) {
				publishErr = ErrPublishTimeout
			}
			break retry
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	coremon.CaptureException(publishErr, map[string]string{"module": "mqtt", "topic": p.topic})
	return fmt.Errorf("publish fallback: %w", publishErr)
}

// Listen subscribes to the fallback topic and invokes fn for every
// received signal.
func (p *FallbackPublisher) Listen(fn func(FallbackMessage)) error {
	token := p.cli.Subscribe(p.topic, p.qos, func(_ paho.Client, msg paho.Message) {
		var m FallbackMessage
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			p.logger.Warnf("invalid fallback message: %v", err)
			return
		}
		fn(m)
	})
	token.Wait()
	return token.Error()
}

// Disconnect gracefully closes the MQTT connection.
func (p *FallbackPublisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
