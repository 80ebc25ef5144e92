package allocator

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/slotgate/core/admission"
	"github.com/kilianp07/slotgate/core/factory"
	"github.com/kilianp07/slotgate/core/model"
)

const sqliteQuery = `SELECT COUNT(*) = 0 FROM busy WHERE server_url = ? AND ? > 0`

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "slots.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(`CREATE TABLE busy(server_url TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO busy VALUES ('https://busy.example.com')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return db
}

func TestSQLAllocator(t *testing.T) {
	a := NewSQLAllocator(openTestDB(t), sqliteQuery)
	ctx := context.Background()

	granted, err := a.AcquireSlot(ctx, model.SlotRequest{ServerURL: "https://free.example.com", CooldownSeconds: 60})
	if err != nil || !granted {
		t.Fatalf("expected grant, got %v %v", granted, err)
	}
	granted, err = a.AcquireSlot(ctx, model.SlotRequest{ServerURL: "https://busy.example.com", CooldownSeconds: 60})
	if err != nil || granted {
		t.Fatalf("expected busy, got %v %v", granted, err)
	}
}

func TestSQLAllocatorNull(t *testing.T) {
	a := NewSQLAllocator(openTestDB(t), `SELECT NULL WHERE ? IS NOT NULL AND ? IS NOT NULL`)
	_, err := a.AcquireSlot(context.Background(), model.SlotRequest{ServerURL: "x", CooldownSeconds: 1})
	if !errors.Is(err, ErrUnexpectedResponse) {
		t.Fatalf("expected ErrUnexpectedResponse, got %v", err)
	}
}

func TestSQLAllocatorQueryError(t *testing.T) {
	a := NewSQLAllocator(openTestDB(t), `SELECT acquire_server_slot(?, ?)`)
	if _, err := a.AcquireSlot(context.Background(), model.SlotRequest{ServerURL: "x"}); err == nil {
		t.Fatalf("expected error for unknown function")
	}
}

func TestSQLAllocatorFactory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.db")
	alloc, err := admission.NewAllocator(factory.ModuleConfig{Type: "sql", Conf: map[string]any{
		"driver": "sqlite",
		"dsn":    path,
		"query":  `SELECT ? <> '' AND ? >= 0`,
	}})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	defer func() { _ = alloc.(*SQLAllocator).Close() }()
	granted, err := alloc.AcquireSlot(context.Background(), model.SlotRequest{ServerURL: "s", CooldownSeconds: 5})
	if err != nil || !granted {
		t.Fatalf("expected grant, got %v %v", granted, err)
	}
	if _, err := admission.NewAllocator(factory.ModuleConfig{Type: "sql"}); err == nil {
		t.Fatalf("missing dsn should fail")
	}
}
