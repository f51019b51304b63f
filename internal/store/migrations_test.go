package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func openRaw(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunMigrations_FreshDatabase(t *testing.T) {
	// Given: a fresh database
	db := openRaw(t)

	// When: migrations run
	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	// Then: both tables exist with every column
	if _, err := db.Exec(`SELECT id, name, client, go_live_date, created_at, updated_at FROM projects LIMIT 0`); err != nil {
		t.Errorf("projects missing columns: %v", err)
	}
	if _, err := db.Exec(`SELECT id, project_id, label, phase, start_date, end_date, position, created_at, updated_at FROM milestones LIMIT 0`); err != nil {
		t.Errorf("milestones missing columns: %v", err)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := openRaw(t)
	if err := RunMigrations(db); err != nil {
		t.Fatalf("first migration failed: %v", err)
	}
	if err := RunMigrations(db); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}

	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatal(err)
	}
	if v != 1 {
		t.Errorf("SchemaVersion = %d, want 1", v)
	}
}

func TestRunMigrations_EnforcesDateRange(t *testing.T) {
	db := openRaw(t)
	if err := RunMigrations(db); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO projects (id, name, created_at, updated_at) VALUES ('p', 'P', 'x', 'x')`); err != nil {
		t.Fatal(err)
	}
	_, err := db.Exec(`INSERT INTO milestones (id, project_id, label, start_date, end_date, position, created_at, updated_at)
		VALUES ('m', 'p', 'Edit', '2026-01-10', '2026-01-09', 0, 'x', 'x')`)
	if err == nil {
		t.Error("inverted range accepted by the schema")
	}
}
