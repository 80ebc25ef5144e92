package allocator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/kilianp07/slotgate/auth"
	"github.com/kilianp07/slotgate/core/factory"
	"github.com/kilianp07/slotgate/core/logger"
	"github.com/kilianp07/slotgate/core/model"
	infralogger "github.com/kilianp07/slotgate/infra/logger"
)

// ErrUnexpectedResponse is returned when the allocator answers with
// something other than a boolean.
var ErrUnexpectedResponse = errors.New("allocator: unexpected response")

// DefaultFunction is the remote procedure invoked to acquire a slot.
const DefaultFunction = "acquire_server_slot"

// RPCConfig configures RPCAllocator.
type RPCConfig struct {
	// BaseURL is the allocator service root, e.g. https://db.example.com.
	BaseURL string `json:"base_url"`
	// Function is the procedure name; defaults to acquire_server_slot.
	Function string `json:"function"`
	// APIKey is sent as apikey header and bearer token when OAuth is off.
	APIKey string `json:"api_key"`
	// OAuth enables client-credentials tokens instead of the API key.
	OAuth   auth.Conf     `json:"oauth"`
	Timeout time.Duration `json:"timeout"`
}

// RPCAllocator calls POST {base}/rest/v1/rpc/{function} with the slot
// request as JSON and expects a JSON boolean.
type RPCAllocator struct {
	url    string
	fn     string
	apiKey string
	tokens auth.TokenProvider
	client *http.Client
	log    logger.Logger
}

// NewRPCAllocator validates cfg and builds the allocator.
func NewRPCAllocator(cfg RPCConfig) (*RPCAllocator, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("allocator: base_url is required")
	}
	fn := cfg.Function
	if fn == "" {
		fn = DefaultFunction
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var tokens auth.TokenProvider = auth.StaticToken(cfg.APIKey)
	if cfg.OAuth.Enabled() {
		tokens = auth.NewClientCred(cfg.OAuth)
	}
	return &RPCAllocator{
		url:    strings.TrimSuffix(cfg.BaseURL, "/") + "/rest/v1/rpc/" + fn,
		fn:     fn,
		apiKey: cfg.APIKey,
		tokens: tokens,
		client: &http.Client{Timeout: timeout},
		log:    infralogger.New("rpc-allocator"),
	}, nil
}

// SetHTTPClient replaces the HTTP client, mainly for tests.
func (a *RPCAllocator) SetHTTPClient(c *http.Client) {
	if c != nil {
		a.client = c
	}
}

// URL returns the procedure endpoint.
func (a *RPCAllocator) URL() string { return a.url }

// AcquireSlot asks the allocator for a slot. A false result means the
// server is busy.
func (a *RPCAllocator) AcquireSlot(ctx context.Context, req model.SlotRequest) (bool, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return false, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		httpReq.Header.Set("apikey", a.apiKey)
	}
	if err := auth.SetAuthHeader(httpReq, a.tokens); err != nil {
		return false, fmt.Errorf("allocator auth: %w", err)
	}
	resp, err := a.client.Do(httpReq)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(data, "message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return false, fmt.Errorf("allocator status %d: %s", resp.StatusCode, msg)
	}
	granted, err := parseGrant(data, a.fn)
	if err != nil {
		return false, err
	}
	a.log.Debugf("slot request for %s: granted=%t", req.ServerURL, granted)
	return granted, nil
}

// parseGrant accepts a bare boolean or a single-element array/object
// wrapping one, as returned by different PostgREST versions. Objects are
// keyed by the procedure name fn.
func parseGrant(data []byte, fn string) (bool, error) {
	res := gjson.ParseBytes(data)
	switch {
	case res.IsBool():
		return res.Bool(), nil
	case res.IsArray() && len(res.Array()) == 1:
		return parseGrant([]byte(res.Array()[0].Raw), fn)
	case res.IsObject():
		if v := res.Get(gjson.Escape(fn)); v.IsBool() {
			return v.Bool(), nil
		}
	}
	return false, fmt.Errorf("%w: %s", ErrUnexpectedResponse, strings.TrimSpace(string(data)))
}

func newRPCFromConf(conf map[string]any) (*RPCAllocator, error) {
	var cfg RPCConfig
	if err := factory.Decode(conf, &cfg); err != nil {
		return nil, err
	}
	return NewRPCAllocator(cfg)
}
