package shared

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	// In-memory databases are per-connection
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	return count > 0
}

func TestMigrations(t *testing.T) {
	t.Run("RunMigrations", func(t *testing.T) {
		db := openTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("expected migrations to apply, got %v", err)
		}

		for _, table := range []string{"cached_playlists", "cached_tracks", "search_history", "schema_migrations"} {
			if !tableExists(t, db, table) {
				t.Errorf("expected table %s to exist", table)
			}
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		db := openTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Errorf("second run should be a no-op, got %v", err)
		}
	})

	t.Run("Rollback", func(t *testing.T) {
		db := openTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("expected rollback to succeed, got %v", err)
		}

		if tableExists(t, db, "cached_playlists") {
			t.Error("expected cached_playlists to be dropped")
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when nothing left to roll back")
		}
	})
}
