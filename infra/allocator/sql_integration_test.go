//go:build integration

package allocator

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/kilianp07/slotgate/core/model"
	"github.com/kilianp07/slotgate/internal/testutil"
)

const acquireFn = `
CREATE TABLE server_slots (
	server_url TEXT PRIMARY KEY,
	busy_until TIMESTAMPTZ NOT NULL
);
CREATE FUNCTION acquire_server_slot(p_server_url TEXT, p_cooldown_seconds INT)
RETURNS BOOLEAN AS $$
BEGIN
	INSERT INTO server_slots(server_url, busy_until)
	VALUES (p_server_url, now() + make_interval(secs => p_cooldown_seconds))
	ON CONFLICT (server_url) DO UPDATE
		SET busy_until = EXCLUDED.busy_until
		WHERE server_slots.busy_until < now();
	RETURN FOUND;
END;
$$ LANGUAGE plpgsql;
`

func TestSQLAllocatorPostgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	dsn, cleanup, err := testutil.StartPostgres(ctx)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	defer cleanup()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = db.Close() }()
	if _, err := db.ExecContext(ctx, acquireFn); err != nil {
		t.Fatalf("schema: %v", err)
	}

	a, err := OpenSQLAllocator(SQLConfig{DSN: dsn})
	if err != nil {
		t.Fatalf("allocator: %v", err)
	}
	defer func() { _ = a.Close() }()

	req := model.SlotRequest{ServerURL: "https://gen.example.com", CooldownSeconds: 60}
	granted, err := a.AcquireSlot(ctx, req)
	if err != nil || !granted {
		t.Fatalf("first acquire: %v %v", granted, err)
	}
	granted, err = a.AcquireSlot(ctx, req)
	if err != nil || granted {
		t.Fatalf("second acquire should be busy: %v %v", granted, err)
	}
}
