package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/config"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), config.DatabaseConfig{Path: MemoryPath})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup
	return db
}

func TestOpen(t *testing.T) {
	t.Run("creates nested directories and the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state", "nested", "history.db")
		db, err := Open(context.Background(), config.DatabaseConfig{Path: path, WALMode: true, BusyTimeout: 5})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // test cleanup

		if err := db.HealthCheck(context.Background()); err != nil {
			t.Fatalf("HealthCheck() error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("database file missing: %v", err)
		}
		if db.Path() != path {
			t.Errorf("Path() = %q, want %q", db.Path(), path)
		}
	})

	t.Run("in memory", func(t *testing.T) {
		db := openTestDB(t)
		if err := db.HealthCheck(context.Background()); err != nil {
			t.Errorf("HealthCheck() error = %v", err)
		}
		if got := db.Stats().MaxOpenConnections; got != 1 {
			t.Errorf("MaxOpenConnections = %d, want 1", got)
		}
	})
}

func TestClose_Nil(t *testing.T) {
	var db *DB
	if err := db.Close(); err != nil {
		t.Errorf("Close() on nil DB error = %v", err)
	}
}

func TestInTx(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "CREATE TABLE runs (id INTEGER PRIMARY KEY, note TEXT)"); err != nil {
		t.Fatalf("CREATE TABLE error = %v", err)
	}

	errBoom := errors.New("boom")
	tests := []struct {
		name      string
		fn        func(*sql.Tx) error
		wantErr   error
		wantCount int
	}{
		{
			name: "commit",
			fn: func(tx *sql.Tx) error {
				_, err := tx.ExecContext(ctx, "INSERT INTO runs (note) VALUES ('kept')")
				return err
			},
			wantCount: 1,
		},
		{
			name: "rollback on error",
			fn: func(tx *sql.Tx) error {
				if _, err := tx.ExecContext(ctx, "INSERT INTO runs (note) VALUES ('dropped')"); err != nil {
					return err
				}
				return errBoom
			},
			wantErr:   errBoom,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.InTx(ctx, tt.fn)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("InTx() error = %v, want %v", err, tt.wantErr)
			}
			var count int
			if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
				t.Fatalf("COUNT error = %v", err)
			}
			if count != tt.wantCount {
				t.Errorf("rows = %d, want %d", count, tt.wantCount)
			}
		})
	}
}
