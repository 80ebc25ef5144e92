package allocator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/kilianp07/slotgate/core/factory"
	"github.com/kilianp07/slotgate/core/model"
)

// DefaultQuery invokes the allocator function on PostgreSQL.
const DefaultQuery = "SELECT acquire_server_slot($1, $2)"

// SQLConfig configures SQLAllocator.
type SQLConfig struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
	// Query receives the server URL and the cooldown in seconds and must
	// return a single boolean.
	Query        string `json:"query"`
	MaxOpenConns int    `json:"max_open_conns"`
}

// SQLAllocator acquires slots by calling a database function directly.
type SQLAllocator struct {
	db    *sql.DB
	query string
}

// OpenSQLAllocator opens the database described by cfg. The driver
// defaults to postgres.
func OpenSQLAllocator(cfg SQLConfig) (*SQLAllocator, error) {
	if cfg.DSN == "" {
		return nil, errors.New("allocator: dsn is required")
	}
	driver := cfg.Driver
	if driver == "" {
		driver = "postgres"
	}
	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	return NewSQLAllocator(db, cfg.Query), nil
}

// NewSQLAllocator wraps an existing database handle.
func NewSQLAllocator(db *sql.DB, query string) *SQLAllocator {
	if query == "" {
		query = DefaultQuery
	}
	return &SQLAllocator{db: db, query: query}
}

// AcquireSlot runs the configured query.
func (a *SQLAllocator) AcquireSlot(ctx context.Context, req model.SlotRequest) (bool, error) {
	var granted sql.NullBool
	if err := a.db.QueryRowContext(ctx, a.query, req.ServerURL, req.CooldownSeconds).Scan(&granted); err != nil {
		return false, fmt.Errorf("acquire slot: %w", err)
	}
	if !granted.Valid {
		return false, fmt.Errorf("%w: null", ErrUnexpectedResponse)
	}
	return granted.Bool, nil
}

// Close closes the database handle.
func (a *SQLAllocator) Close() error { return a.db.Close() }

func newSQLFromConf(conf map[string]any) (*SQLAllocator, error) {
	var cfg SQLConfig
	if err := factory.Decode(conf, &cfg); err != nil {
		return nil, err
	}
	return OpenSQLAllocator(cfg)
}
