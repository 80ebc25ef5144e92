package logging

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/slotgate/core/model"
)

func sampleEntries(now time.Time) []model.LogEntry {
	return []model.LogEntry{
		{Timestamp: now.Add(-2 * time.Hour), DispatchID: "d1", Operation: "generate", Model: "m1", Status: model.LogSuccess, Output: "ok"},
		{Timestamp: now.Add(-time.Hour), DispatchID: "d2", Operation: "generate", Model: "m2", Status: model.LogError, Error: "quota exceeded"},
		{Timestamp: now, DispatchID: "d3", Operation: "list", Model: "m1", Status: model.LogSuccess},
	}
}

func openStores(t *testing.T) map[string]LogStore {
	t.Helper()
	dir := t.TempDir()
	jsonl, err := NewJSONLStore(filepath.Join(dir, "dispatch.jsonl"))
	if err != nil {
		t.Fatalf("jsonl: %v", err)
	}
	rot, err := NewRotatingJSONLStore(filepath.Join(dir, "rot", "dispatch.jsonl"), 1, 2, 1)
	if err != nil {
		t.Fatalf("rotating: %v", err)
	}
	sq, err := NewSQLiteStore(filepath.Join(dir, "dispatch.db"))
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	stores := map[string]LogStore{"jsonl": jsonl, "rotating": rot, "sqlite": sq, "memory": NewMemoryStore()}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStores_AppendQuery(t *testing.T) {
	now := time.Now().UTC()
	errStatus := model.LogError
	for name, store := range openStores(t) {
		ctx := context.Background()
		for _, e := range sampleEntries(now) {
			if err := store.Append(ctx, e); err != nil {
				t.Fatalf("%s: append: %v", name, err)
			}
		}
		checks := []struct {
			desc string
			q    LogQuery
			want []string
		}{
			{"all", LogQuery{}, []string{"d1", "d2", "d3"}},
			{"operation", LogQuery{Operation: "generate"}, []string{"d1", "d2"}},
			{"model", LogQuery{Model: "m1"}, []string{"d1", "d3"}},
			{"status", LogQuery{Status: &errStatus}, []string{"d2"}},
			{"window", LogQuery{Start: now.Add(-90 * time.Minute), End: now.Add(-30 * time.Minute)}, []string{"d2"}},
			{"dispatch", LogQuery{DispatchID: "d3"}, []string{"d3"}},
			{"limit", LogQuery{Limit: 1}, []string{"d3"}},
		}
		for _, c := range checks {
			out, err := store.Query(ctx, c.q)
			if err != nil {
				t.Fatalf("%s/%s: query: %v", name, c.desc, err)
			}
			if len(out) != len(c.want) {
				t.Fatalf("%s/%s: expected %d entries got %d", name, c.desc, len(c.want), len(out))
			}
			for i, id := range c.want {
				if out[i].DispatchID != id {
					t.Errorf("%s/%s: entry %d = %s want %s", name, c.desc, i, out[i].DispatchID, id)
				}
			}
		}
		out, _ := store.Query(ctx, LogQuery{DispatchID: "d2"})
		if out[0].Error != "quota exceeded" || out[0].Status != model.LogError {
			t.Errorf("%s: entry not round-tripped: %#v", name, out[0])
		}
	}
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	big := make([]byte, 64*1024)
	for i := range big {
		big[i] = 'x'
	}
	e := model.LogEntry{Timestamp: time.Now(), Output: string(big)}
	for i := 0; i < 20; i++ {
		if err := store.Append(context.Background(), e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	files, _ := filepath.Glob(filepath.Join(dir, "log*"))
	if len(files) < 2 {
		t.Fatalf("expected rotated files, got %v", files)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"jsonl", "rotating", "sqlite", "memory"} {
		s, err := Open(Options{Backend: backend, Path: filepath.Join(dir, backend+".log")})
		if err != nil {
			t.Fatalf("%s: %v", backend, err)
		}
		_ = s.Close()
	}
	if _, err := Open(Options{Backend: "kafka"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
