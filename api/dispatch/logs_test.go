package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kilianp07/slotgate/core/dispatch/logging"
	"github.com/kilianp07/slotgate/core/model"
)

func seededStore(t *testing.T) logging.LogStore {
	t.Helper()
	store := logging.NewMemoryStore()
	now := time.Now().UTC()
	entries := []model.LogEntry{
		{Timestamp: now.Add(-2 * time.Hour), DispatchID: "a", Operation: "generate", Model: "m1", Status: model.LogSuccess},
		{Timestamp: now.Add(-time.Hour), DispatchID: "b", Operation: "generate", Model: "m2", Status: model.LogError, Error: "quota exceeded"},
		{Timestamp: now, DispatchID: "c", Operation: "embed", Model: "m1", Status: model.LogSuccess},
	}
	for _, e := range entries {
		if err := store.Append(context.Background(), e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return store
}

func getLogs(t *testing.T, h http.Handler, query, token string) (int, []model.LogEntry) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/dispatch/logs"+query, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var out []model.LogEntry
	if rr.Code == http.StatusOK {
		if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return rr.Code, out
}

func TestLogHandler_AuthAndFilters(t *testing.T) {
	h := NewLogHandler(seededStore(t), "tok")

	if code, _ := getLogs(t, h, "", ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", code)
	}
	code, out := getLogs(t, h, "", "tok")
	if code != http.StatusOK || len(out) != 3 {
		t.Fatalf("expected 3 entries, got %d (%d)", len(out), code)
	}
	_, out = getLogs(t, h, "?operation=generate&status=error", "tok")
	if len(out) != 1 || out[0].DispatchID != "b" || out[0].Error != "quota exceeded" {
		t.Fatalf("unexpected filtered entries %+v", out)
	}
	_, out = getLogs(t, h, "?model=m1&limit=1", "tok")
	if len(out) != 1 || out[0].DispatchID != "c" {
		t.Fatalf("unexpected limited entries %+v", out)
	}
	start := time.Now().UTC().Add(-90 * time.Minute).Format(time.RFC3339)
	_, out = getLogs(t, h, "?start="+start, "tok")
	if len(out) != 2 {
		t.Fatalf("expected 2 entries after start, got %d", len(out))
	}
}

func TestLogHandler_BadQuery(t *testing.T) {
	h := NewLogHandler(seededStore(t), "")
	for _, q := range []string{"?start=yesterday", "?status=maybe", "?limit=-1"} {
		if code, _ := getLogs(t, h, q, ""); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", q, code)
		}
	}
}

func TestLogHandler_EmptyIsArray(t *testing.T) {
	h := NewLogHandler(logging.NewMemoryStore(), "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dispatch/logs", nil))
	if body := rr.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array got %q", body)
	}
}
