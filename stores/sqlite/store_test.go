package sqlite

import (
	"context"
	"excaliapp/core"
	"excaliapp/stores/storetest"
	"os"
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) *sqliteStore {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.DrawingRepository {
		return setupTestDB(t)
	})
}

func TestNewStore_CreatesFileAndTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "drawings.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("NewStore() did not create database file")
	}

	var tableName string
	err = store.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='drawings'").Scan(&tableName)
	if err != nil {
		t.Fatalf("drawings table not created: %v", err)
	}
}

func TestNewStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "drawings.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	if err := store.Create(context.Background(), &core.Drawing{ID: "f1", UserID: "a@example.com", Name: "n", Data: "{}"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	store.Close()

	reopened, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.Get(context.Background(), "a@example.com", "f1"); err != nil {
		t.Errorf("Get() after reopen failed: %v", err)
	}
}

func TestEmptyThumbnailStoredAsNull(t *testing.T) {
	store := setupTestDB(t)
	if err := store.Create(context.Background(), &core.Drawing{ID: "f1", UserID: "a@example.com", Name: "n", Data: "{}"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	var isNull bool
	if err := store.db.QueryRow("SELECT thumbnail IS NULL FROM drawings WHERE id = 'f1'").Scan(&isNull); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !isNull {
		t.Error("empty thumbnail should be stored as NULL")
	}
}
