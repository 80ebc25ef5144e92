// Package dispatch exposes the dispatcher and its log store over HTTP.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	coredispatch "github.com/kilianp07/slotgate/core/dispatch"
)

var errBadLimit = errors.New("limit must be a non-negative integer")

const maxRequestBody = 4 << 20

// Dispatcher is the part of *dispatch.Dispatcher used by the handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, req coredispatch.Request) (coredispatch.Result, error)
}

// Request is the body of POST /api/dispatch.
type Request struct {
	Endpoint  string          `json:"endpoint"`
	Operation string          `json:"operation"`
	Body      json.RawMessage `json:"body"`
	Token     string          `json:"token,omitempty"`
	Model     string          `json:"model,omitempty"`
	Prompt    string          `json:"prompt,omitempty"`
}

// ErrorResponse is returned for failed dispatches.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// NewDispatchHandler returns the POST /api/dispatch handler. defaultEndpoint
// is used when the request names none.
func NewDispatchHandler(d Dispatcher, token, defaultEndpoint string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req Request
		dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Endpoint == "" {
			req.Endpoint = defaultEndpoint
		}
		if !strings.HasPrefix(req.Endpoint, "http://") && !strings.HasPrefix(req.Endpoint, "https://") {
			http.Error(w, "endpoint must be an absolute http(s) URL", http.StatusBadRequest)
			return
		}
		// A started dispatch runs to a terminal state even if the client goes away.
		res, err := d.Dispatch(context.WithoutCancel(r.Context()), coredispatch.Request{
			Endpoint:  req.Endpoint,
			Operation: req.Operation,
			Body:      req.Body,
			Override:  req.Token,
			Model:     req.Model,
			Prompt:    req.Prompt,
		})
		if err != nil {
			writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error(), Kind: coredispatch.Kind(err)})
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
}

func statusFor(err error) int {
	switch coredispatch.Kind(err) {
	case "admission":
		return http.StatusServiceUnavailable
	case "missing_credential":
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

// Register mounts the handlers on mux.
func Register(mux *http.ServeMux, d Dispatcher, logs http.Handler, token, defaultEndpoint string) {
	mux.Handle("/api/dispatch", NewDispatchHandler(d, token, defaultEndpoint))
	if logs != nil {
		mux.Handle("/api/dispatch/logs", logs)
	}
}
