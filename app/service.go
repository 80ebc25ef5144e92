// Package app wires configuration into a running slotgate service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/slotgate/api/dispatch"
	"github.com/kilianp07/slotgate/app/plugins"
	"github.com/kilianp07/slotgate/config"
	"github.com/kilianp07/slotgate/core/admission"
	coredispatch "github.com/kilianp07/slotgate/core/dispatch"
	"github.com/kilianp07/slotgate/core/dispatch/logging"
	"github.com/kilianp07/slotgate/core/events"
	coremetrics "github.com/kilianp07/slotgate/core/metrics"
	coremon "github.com/kilianp07/slotgate/core/monitoring"
	_ "github.com/kilianp07/slotgate/infra/allocator"
	"github.com/kilianp07/slotgate/infra/identity"
	"github.com/kilianp07/slotgate/infra/logger"
	"github.com/kilianp07/slotgate/infra/metrics"
	"github.com/kilianp07/slotgate/infra/monitoring"
	"github.com/kilianp07/slotgate/infra/mqtt"
	"github.com/kilianp07/slotgate/internal/eventbus"
)

// Service owns the dispatcher and its collaborators.
type Service struct {
	Dispatcher *coredispatch.Dispatcher
	Store      logging.LogStore
	Fallbacks  *events.BusNotifier

	cfg       config.APIConfig
	defaultEP string
	bus       *eventbus.Bus
	sink      coremetrics.MetricsSink
	publisher *mqtt.FallbackPublisher
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	alloc, err := admission.NewAllocator(cfg.Allocator)
	if err != nil {
		return nil, fmt.Errorf("allocator: %w", err)
	}
	src, err := identity.New(cfg.Identity)
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}
	gate := admission.NewGate(alloc, cfg.Dispatch.RetryDelay(), logger.New("admission"))
	d, err := coredispatch.NewDispatcher(cfg.Dispatch, gate, src, logger.New("dispatcher"))
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}

	policy, err := plugins.NewFallbackPolicy(cfg.Dispatch.FallbackPolicy)
	if err != nil {
		return nil, fmt.Errorf("fallback policy: %w", err)
	}
	d.SetFallbackPolicy(policy)

	store, err := logging.Open(cfg.Logging.Options())
	if err != nil {
		return nil, fmt.Errorf("log store: %w", err)
	}
	d.SetLogStore(store)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	d.SetMetricsSink(sink)

	bus := eventbus.New()
	d.SetEventBus(bus)
	if _, err := metrics.RegisterBusStats(nil, bus); err != nil {
		logg.Warnf("event bus metrics: %v", err)
	}

	fallbacks := events.NewBusNotifier()
	notifiers := coredispatch.MultiNotifier{fallbacks}
	var pub *mqtt.FallbackPublisher
	if cfg.MQTT.Enabled {
		pub, err = mqtt.NewFallbackPublisher(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt: %w", err)
		}
		notifiers = append(notifiers, pub)
	}
	d.SetNotifier(notifiers)

	return &Service{
		Dispatcher: d,
		Store:      store,
		Fallbacks:  fallbacks,
		cfg:        cfg.API,
		defaultEP:  cfg.Dispatch.DefaultEndpoint,
		bus:        bus,
		sink:       sink,
		publisher:  pub,
		log:        logg,
	}, nil
}

// Handler returns the HTTP surface: dispatch, log query and /metrics.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	dispatch.Register(mux, s.Dispatcher, dispatch.NewLogHandler(s.Store, s.cfg.LogsToken), s.cfg.DispatchToken, s.defaultEP)
	mux.Handle("/metrics", metrics.Handler(nil))
	return mux
}

// Run serves the API until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	defer coremon.Recover()
	srv := &http.Server{Addr: s.cfg.Address, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	metrics.StartEventCollector(ctx, s.bus, auditSink{log: logger.New("audit")})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.ShutdownSeconds)*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.log.Debugf("closing event bus: %d subscribers, %d dropped events", s.bus.Subscribers(), s.bus.Dropped())
	s.bus.Close()
	s.Fallbacks.Close()
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	coremon.Flush(2 * time.Second)
	return s.Store.Close()
}
