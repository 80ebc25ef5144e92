// Package logging persists dispatch log entries and answers queries over
// them. Stores are safe for concurrent use.
package logging

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/slotgate/core/model"
)

// LogQuery defines filters for retrieving entries. Zero values match all.
type LogQuery struct {
	Start      time.Time
	End        time.Time
	DispatchID string
	Operation  string
	Model      string
	Status     *model.LogStatus
	Limit      int
}

// Match reports whether e satisfies every filter of q.
func (q LogQuery) Match(e model.LogEntry) bool {
	if !q.Start.IsZero() && e.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && e.Timestamp.After(q.End) {
		return false
	}
	if q.DispatchID != "" && e.DispatchID != q.DispatchID {
		return false
	}
	if q.Operation != "" && e.Operation != q.Operation {
		return false
	}
	if q.Model != "" && e.Model != q.Model {
		return false
	}
	if q.Status != nil && e.Status != *q.Status {
		return false
	}
	return true
}

// LogStore persists entries and supports querying.
type LogStore interface {
	Append(ctx context.Context, e model.LogEntry) error
	Query(ctx context.Context, q LogQuery) ([]model.LogEntry, error)
	Close() error
}

// Options selects and configures a store backend.
type Options struct {
	// Backend is "jsonl", "rotating", "sqlite" or "memory".
	Backend    string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Open creates the store described by opts.
func Open(opts Options) (LogStore, error) {
	switch opts.Backend {
	case "jsonl":
		return NewJSONLStore(opts.Path)
	case "rotating":
		return NewRotatingJSONLStore(opts.Path, opts.MaxSizeMB, opts.MaxBackups, opts.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(opts.Path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

func limit(out []model.LogEntry, n int) []model.LogEntry {
	if n > 0 && len(out) > n {
		return out[len(out)-n:]
	}
	return out
}
