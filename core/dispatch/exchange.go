package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/kilianp07/slotgate/core/model"
)

// HTTPDoer is the transport used for the generation call.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Header names sent with every attempt.
const (
	HeaderAuthorization = "Authorization"
	HeaderUsername      = "x-user-username"
)

// exchange POSTs body to endpoint with cred as bearer token. It returns the
// decoded payload and the HTTP status. Every failure is a *RemoteCallError.
func exchange(ctx context.Context, client HTTPDoer, endpoint string, body []byte, cred model.Credential, username string) (json.RawMessage, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, &RemoteCallError{Message: fmt.Sprintf("build request: %v", err), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderAuthorization, "Bearer "+cred.Value)
	req.Header.Set(HeaderUsername, username)

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, &RemoteCallError{Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &RemoteCallError{Status: resp.StatusCode, Message: fmt.Sprintf("read response: %v", err), Err: err}
	}
	valid := gjson.ValidBytes(data)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := ""
		if valid {
			msg = errorMessage(data)
		}
		return nil, resp.StatusCode, remoteStatusError(resp.StatusCode, msg)
	}
	if !valid {
		return nil, resp.StatusCode, &RemoteCallError{Status: resp.StatusCode, Message: fmt.Sprintf("invalid JSON response (status %d)", resp.StatusCode)}
	}
	return json.RawMessage(data), resp.StatusCode, nil
}

// errorMessage extracts the server supplied message from error.message or
// message.
func errorMessage(data []byte) string {
	for _, path := range []string{"error.message", "message"} {
		if r := gjson.GetBytes(data, path); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}
