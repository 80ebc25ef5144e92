package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/slotgate/core/admission"
	"github.com/kilianp07/slotgate/core/credential"
	"github.com/kilianp07/slotgate/core/dispatch/logging"
	"github.com/kilianp07/slotgate/core/events"
	"github.com/kilianp07/slotgate/core/logger"
	"github.com/kilianp07/slotgate/core/metrics"
	"github.com/kilianp07/slotgate/core/model"
	"github.com/kilianp07/slotgate/core/monitoring"
	"github.com/kilianp07/slotgate/internal/eventbus"
)

// Request describes one dispatch.
type Request struct {
	// Endpoint is the absolute URL to POST to.
	Endpoint string
	// Body is sent as is; an empty body is sent as {}.
	Body json.RawMessage
	// Operation tags the request; generation-class tags go through the gate.
	Operation string
	// Override is an explicit credential that replaces the personal token.
	Override string
	// Model and Prompt are recorded in log entries. When empty they are
	// read from Body.
	Model  string
	Prompt string
	// Identity overrides the dispatcher's identity source for this call.
	Identity credential.IdentitySource
	// OnStatus receives progress messages.
	OnStatus admission.StatusFunc
	// OnFallback is invoked once per failed personal-token attempt.
	OnFallback func()
}

// Result is a successful dispatch.
type Result struct {
	Payload        json.RawMessage `json:"payload"`
	CredentialUsed string          `json:"credential_used"`
	DispatchID     string          `json:"dispatch_id"`
}

// Dispatcher runs admission, credential resolution and the HTTP exchange.
type Dispatcher struct {
	gate       *admission.Gate
	servers    admission.ServerSet
	classifier admission.Classifier
	resolver   *credential.Resolver
	identity   credential.IdentitySource
	logger     logger.Logger

	mu       sync.RWMutex
	client   HTTPDoer
	store    logging.LogStore
	metrics  metrics.MetricsSink
	notifier FallbackNotifier
	bus      eventbus.EventBus
	policy   FallbackPolicy
	now      func() time.Time
}

// NewDispatcher creates a Dispatcher. identity is the default identity
// source, used when a request carries none.
func NewDispatcher(cfg Config, gate *admission.Gate, identity credential.IdentitySource, log logger.Logger) (*Dispatcher, error) {
	if gate == nil {
		return nil, errors.New("dispatch: admission gate is required")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log = logger.OrNop(log)
	if identity == nil {
		identity = credential.NoIdentity{}
	}
	return &Dispatcher{
		gate:       gate,
		servers:    admission.NewServerSet(cfg.Servers, cfg.CooldownSeconds),
		classifier: admission.NewClassifier(cfg.GenerationOperations),
		resolver:   credential.NewResolver(log),
		identity:   identity,
		logger:     log,
		client:     &http.Client{Timeout: cfg.HTTPTimeout()},
		metrics:    metrics.NopSink{},
		policy:     SingleAttempt{},
		now:        time.Now,
	}, nil
}

// SetHTTPClient replaces the transport used for the generation call.
func (d *Dispatcher) SetHTTPClient(c HTTPDoer) {
	if c == nil {
		return
	}
	d.mu.Lock()
	d.client = c
	d.mu.Unlock()
}

// SetLogStore configures the store used to persist dispatch logs.
func (d *Dispatcher) SetLogStore(store logging.LogStore) {
	d.mu.Lock()
	d.store = store
	d.mu.Unlock()
}

// SetMetricsSink configures the sink receiving dispatch results.
func (d *Dispatcher) SetMetricsSink(sink metrics.MetricsSink) {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	d.mu.Lock()
	d.metrics = sink
	d.mu.Unlock()
}

// SetNotifier configures the receiver of personalTokenFailed signals.
func (d *Dispatcher) SetNotifier(n FallbackNotifier) {
	d.mu.Lock()
	d.notifier = n
	d.mu.Unlock()
}

// SetEventBus configures the bus receiving status and attempt events.
func (d *Dispatcher) SetEventBus(bus eventbus.EventBus) {
	d.mu.Lock()
	d.bus = bus
	d.mu.Unlock()
}

// SetFallbackPolicy configures how further credentials are chosen after a
// failed override attempt.
func (d *Dispatcher) SetFallbackPolicy(p FallbackPolicy) {
	if p == nil {
		p = SingleAttempt{}
	}
	d.mu.Lock()
	d.policy = p
	d.mu.Unlock()
}

// collaborators is a snapshot taken at the start of a dispatch.
type collaborators struct {
	client   HTTPDoer
	store    logging.LogStore
	metrics  metrics.MetricsSink
	notifier FallbackNotifier
	bus      eventbus.EventBus
	policy   FallbackPolicy
}

func (d *Dispatcher) snapshot() collaborators {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return collaborators{
		client:   d.client,
		store:    d.store,
		metrics:  d.metrics,
		notifier: d.notifier,
		bus:      d.bus,
		policy:   d.policy,
	}
}

// run holds the state of a single dispatch.
type run struct {
	d        *Dispatcher
	c        collaborators
	req      Request
	id       string
	server   string
	// origin is empty until a credential is resolved.
	origin   string
	model    string
	prompt   string
	started  time.Time
	admitted time.Duration
}

// Dispatch performs one admission-controlled request. The returned error is
// one of *AdmissionError, *MissingCredentialError or
// *ExhaustedCredentialsError.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	r := &run{
		d:       d,
		c:       d.snapshot(),
		req:     req,
		id:      uuid.NewString(),
		started: d.now(),
	}
	body := []byte(req.Body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	r.model, r.prompt = req.Model, req.Prompt
	if r.model == "" || r.prompt == "" {
		m, p := requestFields(body)
		if r.model == "" {
			r.model = m
		}
		if r.prompt == "" {
			r.prompt = p
		}
	}

	if d.classifier.IsGeneration(req.Operation) {
		server, cooldown := d.servers.Resolve(req.Endpoint)
		r.server = server
		if err := d.gate.Acquire(ctx, server, cooldown, r.status); err != nil {
			return Result{}, r.fail(err, 0)
		}
		r.admitted = d.now().Sub(r.started)
	}

	src := req.Identity
	if src == nil {
		src = d.identity
	}
	cred, ok := d.resolver.Resolve(ctx, src, req.Override)
	if !ok {
		r.status(model.StatusCleared)
		return Result{}, r.fail(&MissingCredentialError{}, 0)
	}
	username := d.resolver.Username(ctx, src)
	hasOverride := cred.Origin == model.OriginSpecific

	var (
		lastErr  error
		attempts int
		tried    = map[string]bool{}
	)
	for {
		attempts++
		tried[cred.Value] = true
		r.origin = cred.Origin.String()
		payload, code, err := r.attempt(ctx, cred, body, username)
		if err == nil {
			r.status(model.StatusCleared)
			r.finish(true, "", code, payload)
			return Result{Payload: payload, CredentialUsed: cred.Value, DispatchID: r.id}, nil
		}
		lastErr = err
		if cred.Origin == model.OriginPersonal {
			r.fallback(ctx)
		}
		if !hasOverride {
			break
		}
		next, more := r.c.policy.Next(ctx, cred, err)
		if !more || next.Value == "" || tried[next.Value] {
			break
		}
		cred = next
	}

	r.status(model.StatusCleared)
	exhausted := &ExhaustedCredentialsError{Last: lastErr, Attempts: attempts}
	r.log(ctx, model.LogEntry{
		Status: model.LogError,
		Error:  exhausted.Error(),
	})
	return Result{}, r.fail(exhausted, statusOf(lastErr))
}

// attempt performs one HTTP exchange with cred and records its outcome.
func (r *run) attempt(ctx context.Context, cred model.Credential, body []byte, username string) (json.RawMessage, int, error) {
	r.status(model.StatusAttempting(cred.Origin))
	r.log(ctx, model.LogEntry{
		Status:           model.LogSuccess,
		Output:           "attempting with " + cred.Origin.Kind() + " " + cred.Masked(),
		Origin:           cred.Origin.String(),
		CredentialSuffix: cred.Masked(),
	})
	r.d.logger.Debugw("dispatch attempt", map[string]any{
		"dispatch_id": r.id,
		"endpoint":    r.req.Endpoint,
		"origin":      cred.Origin.String(),
		"credential":  cred.Masked(),
	})

	start := r.d.now()
	payload, code, err := exchange(ctx, r.c.client, r.req.Endpoint, body, cred, username)
	latency := r.d.now().Sub(start)

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	dispatchAttempts.WithLabelValues(r.req.Operation, cred.Origin.String(), outcome).Inc()
	r.publish(events.AttemptEvent{
		DispatchID: r.id,
		Operation:  r.req.Operation,
		Endpoint:   r.req.Endpoint,
		Origin:     cred.Origin,
		StatusCode: code,
		Err:        err,
		Latency:    latency,
	})
	if rec, ok := r.c.metrics.(metrics.AttemptRecorder); ok {
		if rerr := rec.RecordAttempt(metrics.AttemptRecord{
			DispatchID: r.id,
			Operation:  r.req.Operation,
			Origin:     cred.Origin.String(),
			StatusCode: code,
			Success:    err == nil,
			Latency:    latency,
			Time:       start,
		}); rerr != nil {
			r.d.logger.Warnf("metrics attempt: %v", rerr)
		}
	}

	if err != nil {
		r.d.logger.Warnf("dispatch %s attempt with %s %s failed: %v", r.id, cred.Origin.Kind(), cred.Masked(), err)
		r.log(ctx, model.LogEntry{
			Status:           model.LogError,
			Error:            err.Error(),
			Origin:           cred.Origin.String(),
			CredentialSuffix: cred.Masked(),
		})
		return nil, code, err
	}

	output, tokens := responseFields(payload)
	r.log(ctx, model.LogEntry{
		Status:           model.LogSuccess,
		Output:           output,
		TokenCount:       tokens,
		Origin:           cred.Origin.String(),
		CredentialSuffix: cred.Masked(),
	})
	return payload, code, nil
}

// fallback broadcasts personalTokenFailed once.
func (r *run) fallback(ctx context.Context) {
	fallbackSignals.Inc()
	if r.c.notifier != nil {
		if err := r.c.notifier.NotifyFallback(ctx); err != nil {
			r.d.logger.Warnf("fallback notifier: %v", err)
		}
	}
	if r.req.OnFallback != nil {
		r.req.OnFallback()
	}
	if rec, ok := r.c.metrics.(metrics.FallbackRecorder); ok {
		if err := rec.RecordFallback(metrics.FallbackRecord{Time: r.d.now()}); err != nil {
			r.d.logger.Warnf("metrics fallback: %v", err)
		}
	}
	r.publish(events.FallbackSignal{})
}

func (r *run) status(s string) {
	if r.req.OnStatus != nil {
		r.req.OnStatus(s)
	}
	r.publish(events.StatusEvent{DispatchID: r.id, Operation: r.req.Operation, Status: s})
}

func (r *run) publish(e eventbus.Event) {
	if r.c.bus != nil {
		r.c.bus.Publish(e)
	}
}

// log fills the common fields of e and appends it to the store. Store
// failures never fail the dispatch.
func (r *run) log(ctx context.Context, e model.LogEntry) {
	if r.c.store == nil {
		return
	}
	e.Timestamp = r.d.now()
	e.DispatchID = r.id
	e.Operation = r.req.Operation
	e.Endpoint = r.req.Endpoint
	e.Model = r.model
	e.Prompt = r.prompt
	if err := r.c.store.Append(ctx, e); err != nil {
		logStoreFailures.Inc()
		r.d.logger.Errorf("append dispatch log: %v", err)
	}
}

// fail records a terminal error and returns it.
func (r *run) fail(err error, code int) error {
	kind := Kind(err)
	r.d.logger.Errorf("dispatch %s (%s) failed: %v", r.id, r.req.Operation, err)
	monitoring.CaptureException(err, map[string]string{
		"operation":   r.req.Operation,
		"kind":        kind,
		"dispatch_id": r.id,
	})
	r.finish(false, kind, code, nil)
	return err
}

func (r *run) finish(success bool, kind string, code int, payload json.RawMessage) {
	elapsed := r.d.now().Sub(r.started)
	outcome := "success"
	if !success {
		outcome = kind
	}
	dispatchDuration.WithLabelValues(r.req.Operation, outcome).Observe(elapsed.Seconds())

	res := metrics.DispatchResult{
		DispatchID: r.id,
		Operation:  r.req.Operation,
		Endpoint:   r.req.Endpoint,
		Server:     r.server,
		Origin:     r.origin,
		Success:    success,
		ErrorKind:  kind,
		StatusCode: code,
		Latency:    elapsed,
		Admission:  r.admitted,
		Time:       r.started,
	}
	if success {
		_, res.TokenCount = responseFields(payload)
	}
	if err := r.c.metrics.RecordDispatchResult(res); err != nil {
		r.d.logger.Warnf("metrics sink: %v", err)
	}
}

func statusOf(err error) int {
	var rem *RemoteCallError
	if errors.As(err, &rem) {
		return rem.Status
	}
	return 0
}
